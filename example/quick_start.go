package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/nyan233/bitrie"
)

func main() {
	err := os.MkdirAll("dbset", 0755)
	if err != nil {
		panic(err)
	}
	// create file with path is dbset/quick_start
	idx, err := bitrie.Open(bitrie.Config{
		Path: "dbset/quick_start",
	})
	if err != nil {
		panic(err)
	}
	for i := 0; i < 64; i++ {
		err = idx.Add("user-"+strconv.Itoa(i), strconv.FormatUint(rand.Uint64(), 10))
		if err != nil && err != bitrie.ErrDuplicateKey {
			panic(fmt.Errorf("add err:%v", err))
		}
	}
	for i := 0; i < 64; i += 3 {
		if _, err = idx.Remove("user-" + strconv.Itoa(i)); err != nil {
			panic(fmt.Errorf("remove err:%v", err))
		}
	}
	// second page of ten
	err = idx.Skip(10, func(key, value string) bool {
		fmt.Printf("page key=%s, val=%s\n", key, value)
		return key < "user-28"
	})
	if err != nil {
		panic(fmt.Errorf("skip err:%v", err))
	}
	v, err := idx.Find("user-31")
	if err != nil {
		panic(fmt.Errorf("find err:%v", err))
	}
	fmt.Printf("find key=user-31, val=%s, count=%d\n", v, idx.Count())
	// drop tombstones before closing
	if err = idx.Rebuild(); err != nil {
		panic(fmt.Errorf("rebuild err:%v", err))
	}
	fmt.Printf("stat: %+v\n", idx.Stats())
	if err = idx.Close(); err != nil {
		panic(fmt.Errorf("close err:%v", err))
	}
}
