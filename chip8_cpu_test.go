package main

import (
	"math/rand"
	"testing"
)

func newChip8TestRig() *Chip8CPU {
	display := NewDisplay("display", 64, 32)
	input := NewInput("input")
	for i := 0; i < 16; i++ {
		input.RegisterKey(KeyCode(i))
	}
	rng := rand.New(rand.NewSource(1))
	return NewChip8CPU("cpu", nil, display, input, rng)
}

func TestChip8LDVxAndAddImmediate(t *testing.T) {
	c := newChip8TestRig()
	c.LoadROM([]byte{
		0x60, 0x10, // LD V0, 0x10
		0x70, 0x05, // ADD V0, 0x05
	})

	c.OnTick()
	c.OnTick()

	if c.v[0] != 0x15 {
		t.Fatalf("V0=%#02x, want 0x15", c.v[0])
	}
}

func TestChip8SkipIfEqual(t *testing.T) {
	c := newChip8TestRig()
	c.LoadROM([]byte{
		0x60, 0x42, // LD V0, 0x42
		0x30, 0x42, // SE V0, 0x42 (should skip next instr)
		0x61, 0xFF, // LD V1, 0xFF (skipped)
		0x62, 0x07, // LD V2, 0x07
	})

	for i := 0; i < 3; i++ {
		c.OnTick()
	}

	if c.v[1] != 0 {
		t.Fatalf("V1=%#02x, want 0 (instruction should have been skipped)", c.v[1])
	}
	if c.v[2] != 0x07 {
		t.Fatalf("V2=%#02x, want 0x07", c.v[2])
	}
}

func TestChip8CallAndReturn(t *testing.T) {
	c := newChip8TestRig()
	// at 0x200: CALL 0x206; at 0x206: RET
	c.LoadROM([]byte{
		0x22, 0x06,
	})
	copy(c.mem[0x206:], []byte{0x00, 0xEE})

	c.OnTick() // CALL
	if c.pc != 0x206 {
		t.Fatalf("PC=%#03x after CALL, want 0x206", c.pc)
	}
	if c.sp != 1 {
		t.Fatalf("SP=%d after CALL, want 1", c.sp)
	}

	c.OnTick() // RET
	if c.pc != chip8ProgStart+2 {
		t.Fatalf("PC=%#03x after RET, want %#03x", c.pc, chip8ProgStart+2)
	}
	if c.sp != 0 {
		t.Fatalf("SP=%d after RET, want 0", c.sp)
	}
}

func TestChip8AddCarryFlag(t *testing.T) {
	c := newChip8TestRig()
	c.v[0] = 0xFF
	c.v[1] = 0x02
	c.execute8(0, 1, 0x4) // ADD V0, V1

	if c.v[0] != 0x01 {
		t.Fatalf("V0=%#02x, want 0x01 (wrapped)", c.v[0])
	}
	if c.v[0xF] != 1 {
		t.Fatalf("VF=%d, want 1 (carry)", c.v[0xF])
	}
}

func TestChip8BCDStore(t *testing.T) {
	c := newChip8TestRig()
	c.v[0] = 123
	c.i = 0x300
	c.executeF(0, 0x33)

	if c.mem[0x300] != 1 || c.mem[0x301] != 2 || c.mem[0x302] != 3 {
		t.Fatalf("BCD digits = %d,%d,%d, want 1,2,3", c.mem[0x300], c.mem[0x301], c.mem[0x302])
	}
}

func TestChip8DrawSpriteSetsCollisionFlag(t *testing.T) {
	c := newChip8TestRig()
	c.i = 0x300
	c.mem[0x300] = 0xFF // one full row of 8 pixels
	c.v[0], c.v[1] = 0, 0

	c.drawSprite(0, 1, 1)
	if c.v[0xF] != 0 {
		t.Fatalf("VF=%d after first draw, want 0 (no prior collision)", c.v[0xF])
	}

	c.drawSprite(0, 1, 1) // drawing the same sprite again should collide and erase
	if c.v[0xF] != 1 {
		t.Fatalf("VF=%d after second draw, want 1 (collision)", c.v[0xF])
	}
	p, _ := c.display.GetPixel(0, 0)
	if p.R != 0 {
		t.Fatalf("pixel (0,0) should be erased by the XOR redraw")
	}
}
