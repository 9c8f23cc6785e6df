package scene

import "iter"

// BlockCapacity is the number of commands one bin block holds.
const BlockCapacity = 32

// cmdBlock is a fixed-size chunk of commands. Kinds and args are kept in
// parallel arrays so that characterization only touches the kinds.
type cmdBlock struct {
	kinds [BlockCapacity]Kind
	args  [BlockCapacity]Arg
	count int
}

// Bin is the ordered command list of one tile.
//
// Commands are stored in a growable list of fixed-capacity blocks: append is
// O(1) and blocks are kept across Reset so a recycled scene does not
// reallocate.
type Bin struct {
	blocks []*cmdBlock
	used   int // blocks in use; blocks[used:] are spare
}

// Append adds a command at the end of the bin.
func (b *Bin) Append(kind Kind, arg Arg) {
	if b.used == 0 || b.blocks[b.used-1].count == BlockCapacity {
		if b.used == len(b.blocks) {
			b.blocks = append(b.blocks, new(cmdBlock))
		}
		b.blocks[b.used].count = 0
		b.used++
	}
	blk := b.blocks[b.used-1]
	blk.kinds[blk.count] = kind
	blk.args[blk.count] = arg
	blk.count++
}

// Len returns the number of commands.
func (b *Bin) Len() int {
	if b.used == 0 {
		return 0
	}
	return (b.used-1)*BlockCapacity + b.blocks[b.used-1].count
}

// Empty reports whether the bin holds no commands.
func (b *Bin) Empty() bool {
	return b.used == 0 || b.blocks[0].count == 0
}

// At returns command i.
func (b *Bin) At(i int) (Kind, *Arg) {
	blk := b.blocks[i/BlockCapacity]
	j := i % BlockCapacity
	return blk.kinds[j], &blk.args[j]
}

// All iterates the commands in append order.
func (b *Bin) All() iter.Seq2[Kind, *Arg] {
	return func(yield func(Kind, *Arg) bool) {
		for _, blk := range b.blocks[:b.used] {
			for i := 0; i < blk.count; i++ {
				if !yield(blk.kinds[i], &blk.args[i]) {
					return
				}
			}
		}
	}
}

// Kinds iterates the command kinds in append order.
func (b *Bin) Kinds() iter.Seq[Kind] {
	return func(yield func(Kind) bool) {
		for _, blk := range b.blocks[:b.used] {
			for _, k := range blk.kinds[:blk.count] {
				if !yield(k) {
					return
				}
			}
		}
	}
}

// Reset empties the bin, keeping its blocks for reuse. Arguments are
// cleared so the bin does not pin states or queries.
func (b *Bin) Reset() {
	for _, blk := range b.blocks[:b.used] {
		clear(blk.args[:blk.count])
		blk.count = 0
	}
	b.used = 0
}
