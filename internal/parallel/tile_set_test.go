package parallel

import (
	"sync"
	"testing"
)

// =============================================================================
// TileSet Basic Tests
// =============================================================================

func TestTileSet_Create(t *testing.T) {
	tests := []struct {
		name   string
		tilesX int
		tilesY int
		wantOK bool
	}{
		{"valid small", 4, 4, true},
		{"valid large", 100, 100, true},
		{"valid non-square", 100, 10, true},
		{"valid single", 1, 1, true},
		{"invalid zero x", 0, 10, false},
		{"invalid zero y", 10, 0, false},
		{"invalid negative x", -1, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewTileSet(tt.tilesX, tt.tilesY)
			if gotOK := s != nil; gotOK != tt.wantOK {
				t.Fatalf("NewTileSet(%d, %d) non-nil = %v, want %v",
					tt.tilesX, tt.tilesY, gotOK, tt.wantOK)
			}
			if s == nil {
				return
			}
			if s.TilesX() != tt.tilesX || s.TilesY() != tt.tilesY {
				t.Errorf("dims = %dx%d, want %dx%d", s.TilesX(), s.TilesY(), tt.tilesX, tt.tilesY)
			}
			if !s.IsEmpty() {
				t.Error("new TileSet should be empty")
			}
		})
	}
}

func TestTileSet_AddReportsFirstInsertion(t *testing.T) {
	s := NewTileSet(10, 10)

	if !s.Add(3, 4) {
		t.Error("first Add(3,4) should report true")
	}
	if s.Add(3, 4) {
		t.Error("second Add(3,4) should report false")
	}
	if !s.Has(3, 4) {
		t.Error("Has(3,4) should be true")
	}
	if s.Has(4, 3) {
		t.Error("Has(4,3) should be false")
	}
	if s.Add(10, 0) || s.Add(0, -1) {
		t.Error("out-of-bounds Add should report false")
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}

func TestTileSet_AddAllAndClear(t *testing.T) {
	// 13x7 = 91 tiles spans a partial second word.
	s := NewTileSet(13, 7)
	s.AddAll()
	if s.Count() != 91 {
		t.Errorf("Count() after AddAll = %d, want 91", s.Count())
	}

	s.Clear()
	if !s.IsEmpty() {
		t.Error("set should be empty after Clear")
	}
}

func TestTileSet_ForEachRowMajor(t *testing.T) {
	s := NewTileSet(70, 2)
	s.Add(69, 1)
	s.Add(0, 0)
	s.Add(5, 1)

	var got [][2]int
	s.ForEach(func(tx, ty int) {
		got = append(got, [2]int{tx, ty})
	})

	want := [][2]int{{0, 0}, {5, 1}, {69, 1}}
	if len(got) != len(want) {
		t.Fatalf("ForEach visited %d tiles, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ForEach[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

// =============================================================================
// TileSet Concurrency Tests
// =============================================================================

func TestTileSet_ConcurrentAddExactlyOnce(t *testing.T) {
	const tilesX, tilesY = 17, 9
	s := NewTileSet(tilesX, tilesY)

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := 0
			for ty := range tilesY {
				for tx := range tilesX {
					if s.Add(tx, ty) {
						local++
					}
				}
			}
			mu.Lock()
			winners += local
			mu.Unlock()
		}()
	}
	wg.Wait()

	if winners != tilesX*tilesY {
		t.Errorf("total first insertions = %d, want %d", winners, tilesX*tilesY)
	}
	if s.Count() != tilesX*tilesY {
		t.Errorf("Count() = %d, want %d", s.Count(), tilesX*tilesY)
	}
}
