package bitrie

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/zbh255/gocode/random"
)

func initTest(t *testing.T) {
	err := os.RemoveAll("testdata")
	require.NoError(t, err)
	err = os.Mkdir("testdata", 0755)
	if err != nil && !os.IsExist(err) {
		t.Fatal(err)
	}
}

var elevenKeys = []string{
	"Alpha", "Alphabet", "Bae", "Badminton", "Charlie", "Delta",
	"Epsilon", "Epsilon Delta Gamma", "Gamma", "Aarg", "Beast",
}

type indexFactory struct {
	name string
	open func(t *testing.T) *Index
}

// testIndexes covers both node stores behind the same facade.
func testIndexes() []indexFactory {
	return []indexFactory{
		{"Arena", func(t *testing.T) *Index {
			return NewInMemory(Config{})
		}},
		{"MemStorage", func(t *testing.T) *Index {
			idx, err := New(NewMemStorage(), Config{})
			require.NoError(t, err)
			return idx
		}},
	}
}

func addAll(t *testing.T, idx *Index, keys ...string) {
	for _, k := range keys {
		require.NoError(t, idx.Add(k, k+" value"))
	}
}

func sortedEntries(keys ...string) []Entry {
	keys = slices.Clone(keys)
	sort.Strings(keys)
	list := make([]Entry, 0, len(keys))
	for _, k := range keys {
		list = append(list, Entry{Key: k, Value: k + " value"})
	}
	return list
}

func collect(t *testing.T, walk func(fn func(key, value string) bool) error) []Entry {
	var list []Entry
	err := walk(func(key, value string) bool {
		list = append(list, Entry{Key: key, Value: value})
		return true
	})
	require.NoError(t, err)
	return list
}

func TestTrie(t *testing.T) {
	for _, f := range testIndexes() {
		t.Run(f.name, func(t *testing.T) {
			t.Run("Order", func(t *testing.T) {
				idx := f.open(t)
				addAll(t, idx, "Alpha", "Alphabet", "Bat", "Badminton", "Charlie")
				keys, err := idx.Keys()
				require.NoError(t, err)
				require.Equal(t, []string{"Alpha", "Alphabet", "Badminton", "Bat", "Charlie"}, keys)
				require.Equal(t, 5, idx.Count())
			})
			t.Run("FindEveryKey", func(t *testing.T) {
				idx := f.open(t)
				addAll(t, idx, elevenKeys...)
				for _, k := range elevenKeys {
					v, err := idx.Find(k)
					require.NoError(t, err)
					require.Equal(t, k+" value", v)
				}
				for _, k := range []string{"A", "Alph", "Alphabets", "Epsilon Delta", "Zulu", "Ba", "\x00"} {
					_, err := idx.Find(k)
					require.ErrorIs(t, err, ErrNotFound, k)
				}
			})
			t.Run("Duplicate", func(t *testing.T) {
				idx := f.open(t)
				addAll(t, idx, elevenKeys...)
				before := idx.Stats()
				var size int64
				if idx.storage != nil {
					size, _ = idx.storage.Size()
				}
				for _, k := range elevenKeys {
					require.ErrorIs(t, idx.Add(k, "other"), ErrDuplicateKey)
				}
				require.Equal(t, before.NodesCreated, idx.Stats().NodesCreated)
				if idx.storage != nil {
					after, _ := idx.storage.Size()
					require.Equal(t, size, after)
				}
				entries, err := idx.Entries()
				require.NoError(t, err)
				if diff := cmp.Diff(sortedEntries(elevenKeys...), entries); diff != "" {
					t.Fatal(diff)
				}
			})
			t.Run("RemoveAndAdd", func(t *testing.T) {
				idx := f.open(t)
				addAll(t, idx, elevenKeys...)
				ok, err := idx.Remove("Alpha")
				require.NoError(t, err)
				require.True(t, ok)
				ok, err = idx.Remove("Alpha")
				require.NoError(t, err)
				require.False(t, ok)
				ok, err = idx.Remove("Alp")
				require.NoError(t, err)
				require.False(t, ok)
				_, err = idx.Find("Alpha")
				require.ErrorIs(t, err, ErrNotFound)
				v, err := idx.Find("Alphabet")
				require.NoError(t, err)
				require.Equal(t, "Alphabet value", v)
				require.Equal(t, 10, idx.Count())

				require.NoError(t, idx.Add("Alpha", "new value"))
				v, err = idx.Find("Alpha")
				require.NoError(t, err)
				require.Equal(t, "new value", v)
				require.Equal(t, 11, idx.Count())
			})
			t.Run("Skip", func(t *testing.T) {
				idx := f.open(t)
				addAll(t, idx, elevenKeys...)
				all := sortedEntries(elevenKeys...)
				for n := 0; n <= len(all)+2; n++ {
					got := collect(t, func(fn func(key, value string) bool) error {
						return idx.Skip(n, fn)
					})
					want := all[min(n, len(all)):]
					if diff := cmp.Diff(want, got, cmpEmptySlices); diff != "" {
						t.Fatalf("skip %d: %s", n, diff)
					}
				}
				got := collect(t, func(fn func(key, value string) bool) error {
					return idx.Skip(10, fn)
				})
				require.Equal(t, []Entry{{Key: "Gamma", Value: "Gamma value"}}, got)
			})
			t.Run("SkipAfterRemove", func(t *testing.T) {
				idx := f.open(t)
				addAll(t, idx, elevenKeys...)
				removed := []string{"Aarg", "Bae", "Epsilon"}
				for _, k := range removed {
					ok, err := idx.Remove(k)
					require.NoError(t, err)
					require.True(t, ok)
				}
				live := slices.DeleteFunc(slices.Clone(elevenKeys), func(k string) bool {
					return slices.Contains(removed, k)
				})
				all := sortedEntries(live...)
				for n := 0; n <= len(all); n++ {
					got := collect(t, func(fn func(key, value string) bool) error {
						return idx.Skip(n, fn)
					})
					if diff := cmp.Diff(all[n:], got, cmpEmptySlices); diff != "" {
						t.Fatalf("skip %d: %s", n, diff)
					}
				}
			})
			t.Run("From", func(t *testing.T) {
				idx := f.open(t)
				addAll(t, idx, elevenKeys...)
				all := sortedEntries(elevenKeys...)
				probes := append(slices.Clone(elevenKeys), "", "A", "Alp", "Alphabets", "B", "Charles", "G", "Zulu", "\xff")
				for _, k := range probes {
					got := collect(t, func(fn func(key, value string) bool) error {
						return idx.From(k, fn)
					})
					i := sort.Search(len(all), func(i int) bool { return all[i].Key >= k })
					if diff := cmp.Diff(all[i:], got, cmpEmptySlices); diff != "" {
						t.Fatalf("from %q: %s", k, diff)
					}
				}
				fromCharles := collect(t, func(fn func(key, value string) bool) error {
					return idx.From("Charles", fn)
				})
				skip6 := collect(t, func(fn func(key, value string) bool) error {
					return idx.Skip(6, fn)
				})
				require.Equal(t, skip6, fromCharles)
			})
			t.Run("StopEarly", func(t *testing.T) {
				idx := f.open(t)
				addAll(t, idx, elevenKeys...)
				var keys []string
				require.NoError(t, idx.Range(func(key, _ string) bool {
					keys = append(keys, key)
					return len(keys) < 3
				}))
				require.Equal(t, []string{"Aarg", "Alpha", "Alphabet"}, keys)
			})
			t.Run("RandomKeys", func(t *testing.T) {
				idx := f.open(t)
				want := make(map[string]string, 2048)
				for len(want) < 2048 {
					// the generator may return an empty string
					k := "k" + random.GenStringOnAscii(uint32(1+len(want)%24))
					if _, ok := want[k]; ok {
						continue
					}
					v := fmt.Sprintf("v%d", len(want))
					want[k] = v
					require.NoError(t, idx.Add(k, v))
				}
				removed := 0
				for k := range want {
					if removed == 512 {
						break
					}
					ok, err := idx.Remove(k)
					require.NoError(t, err)
					require.True(t, ok)
					delete(want, k)
					removed++
				}
				require.Equal(t, len(want), idx.Count())
				keys := make([]string, 0, len(want))
				for k := range want {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				got, err := idx.Keys()
				require.NoError(t, err)
				require.Equal(t, keys, got)
				for _, k := range keys[:64] {
					v, err := idx.Find(k)
					require.NoError(t, err)
					require.Equal(t, want[k], v)
				}
				middle := collect(t, func(fn func(key, value string) bool) error {
					return idx.Skip(700, fn)
				})
				require.Len(t, middle, len(keys)-700)
				require.Equal(t, keys[700], middle[0].Key)
			})
		})
	}
}

var cmpEmptySlices = cmp.Comparer(func(a, b []Entry) bool {
	return slices.Equal(a, b)
})

func TestTrieSplitCounts(t *testing.T) {
	stat := new(iStat)
	tr := &trie{store: newMemStore(stat)}
	for _, k := range []string{"Bat", "Badminton", "Ba"} {
		require.NoError(t, tr.insert(BitsFromBytes([]byte(k)), []byte(k)))
	}
	root, err := tr.root()
	require.NoError(t, err)
	require.Equal(t, uint32(3), root.total())
	// 'B' starts with a 0 bit
	require.Equal(t, [2]uint32{3, 0}, root.count)
	ba, err := tr.store.load(root.child[0])
	require.NoError(t, err)
	require.True(t, ba.hasValue)
	require.Equal(t, "Ba", string(ba.value))
	require.Equal(t, 15, ba.prefix.Len())
	require.Equal(t, uint32(2), ba.count[0])

	require.ErrorIs(t, tr.insert(BitsFromBytes([]byte("Ba")), nil), ErrDuplicateKey)
	require.ErrorIs(t, tr.insert(Bits{}, nil), ErrEmptyKey)
	count, err := tr.count()
	require.NoError(t, err)
	require.Equal(t, uint32(3), count)
}
