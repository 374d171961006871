package ids_test

import (
	"testing"

	"github.com/zxcat/rustic/internal/ids"
	"github.com/zxcat/rustic/internal/rtest"
)

func TestSetBasics(t *testing.T) {
	a := ids.Hash([]byte("a"))
	b := ids.Hash([]byte("b"))

	s := ids.NewSet(a)
	rtest.Assert(t, s.Has(a), "a should be a member")
	rtest.Assert(t, !s.Has(b), "b should not be a member")

	s.Insert(b)
	rtest.Equals(t, 2, s.Len())

	s.Delete(a)
	rtest.Assert(t, !s.Has(a), "a should have been deleted")
	rtest.Equals(t, 1, s.Len())
}

func TestSetMerge(t *testing.T) {
	a := ids.Hash([]byte("a"))
	b := ids.Hash([]byte("b"))

	s1 := ids.NewSet(a)
	s2 := ids.NewSet(b)
	s1.Merge(s2)

	rtest.Equals(t, 2, s1.Len())
	rtest.Assert(t, s1.Has(a) && s1.Has(b), "merge should include both members")
}

func TestSetListSorted(t *testing.T) {
	a := ids.Hash([]byte("a"))
	b := ids.Hash([]byte("b"))
	c := ids.Hash([]byte("c"))

	s := ids.NewSet(c, a, b)
	list := s.List()
	rtest.Equals(t, 3, len(list))
	for i := 1; i < len(list); i++ {
		rtest.Assert(t, list[i-1].Compare(list[i]) < 0, "list must be sorted ascending")
	}
}
