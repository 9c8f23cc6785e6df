package scene

import "testing"

func TestBin_Empty(t *testing.T) {
	var b Bin
	if !b.Empty() || b.Len() != 0 {
		t.Fatalf("zero Bin: Empty=%v Len=%d", b.Empty(), b.Len())
	}
	for range b.All() {
		t.Fatal("All() yielded on an empty bin")
	}
}

func TestBin_AppendOrderAcrossBlocks(t *testing.T) {
	var b Bin
	n := BlockCapacity*3 + 5
	for i := range n {
		b.Append(KindClearZS, Arg{ClearZS: ClearZS{Value: uint64(i)}})
	}

	if b.Len() != n {
		t.Fatalf("Len() = %d, want %d", b.Len(), n)
	}

	i := 0
	for kind, arg := range b.All() {
		if kind != KindClearZS || arg.ClearZS.Value != uint64(i) {
			t.Fatalf("command %d = %v/%d", i, kind, arg.ClearZS.Value)
		}
		i++
	}
	if i != n {
		t.Errorf("All() yielded %d commands, want %d", i, n)
	}

	k, arg := b.At(BlockCapacity + 1)
	if k != KindClearZS || arg.ClearZS.Value != BlockCapacity+1 {
		t.Errorf("At(%d) = %v/%d", BlockCapacity+1, k, arg.ClearZS.Value)
	}
}

func TestBin_ResetReusesBlocks(t *testing.T) {
	var b Bin
	for range BlockCapacity * 2 {
		b.Append(KindShadeTile, Arg{})
	}
	blocks := len(b.blocks)

	b.Reset()
	if !b.Empty() {
		t.Fatal("bin not empty after Reset")
	}

	for range BlockCapacity * 2 {
		b.Append(KindShadeTile, Arg{})
	}
	if len(b.blocks) != blocks {
		t.Errorf("blocks = %d after reuse, want %d", len(b.blocks), blocks)
	}
}

func TestBin_ResetDropsReferences(t *testing.T) {
	var b Bin
	q := NewQuery(QueryOcclusionCounter)
	b.Append(KindBeginQuery, Arg{Query: q})
	b.Reset()

	if b.blocks[0].args[0].Query != nil {
		t.Error("Reset kept a query reference")
	}
}

func TestBin_Kinds(t *testing.T) {
	var b Bin
	want := []Kind{KindClearColor, KindSetState, KindShadeTile, KindTriangle3}
	for _, k := range want {
		b.Append(k, Arg{})
	}

	var got []Kind
	for k := range b.Kinds() {
		got = append(got, k)
	}
	if len(got) != len(want) {
		t.Fatalf("Kinds() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Kinds()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestKind_TrianglePlanes(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindTriangle1, 1},
		{KindTriangle3, 3},
		{KindTriangle8, 8},
		{KindTriangle3Block4, 3},
		{KindTriangle3Block16, 3},
		{KindTriangle4Block16, 4},
		{KindShadeTile, 0},
		{KindBlit, 0},
	}

	for _, tt := range tests {
		if got := tt.kind.TrianglePlanes(); got != tt.want {
			t.Errorf("%v.TrianglePlanes() = %d, want %d", tt.kind, got, tt.want)
		}
	}

	for n := 1; n <= MaxPlanes; n++ {
		k, ok := TriangleKind(n)
		if !ok || k.TrianglePlanes() != n {
			t.Errorf("TriangleKind(%d) = %v, %v", n, k, ok)
		}
	}
	if _, ok := TriangleKind(MaxPlanes + 1); ok {
		t.Error("TriangleKind accepted too many planes")
	}
}

func TestKind_String(t *testing.T) {
	for k := range NumKinds {
		if k.String() == "" || k.String() == "unknown" {
			t.Errorf("kind %d has no name", k)
		}
	}
	if NumKinds.String() != "unknown" {
		t.Error("NumKinds should not have a name")
	}
}

func TestEdgePlane_Eval(t *testing.T) {
	p := EdgePlane{C: 10, DCDX: -2, DCDY: 3}
	if got := p.Eval(4, 1); got != 10-8+3 {
		t.Errorf("Eval(4, 1) = %d", got)
	}
}
