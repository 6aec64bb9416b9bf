package bitrie

// stackElement is pending cursor work: the whole subtree of ref, whose
// node is reached through the key bits in path.
type stackElement struct {
	ref  nodeRef
	path Bits
}

type stack struct {
	list []stackElement
}

func (s *stack) push(e stackElement) {
	s.list = append(s.list, e)
}

func (s *stack) pop() (stackElement, bool) {
	if len(s.list) == 0 {
		return stackElement{}, false
	}
	v := s.list[len(s.list)-1]
	s.list = s.list[:len(s.list)-1]
	return v, true
}

func (s *stack) reset() {
	s.list = s.list[:0]
}
