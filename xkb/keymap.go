// SPDX-License-Identifier: Unlicense OR MIT

package xkb

import (
	"fmt"
	"os"
	"sync"
)

// A Keymap is a compiled keymap in XKB text format, version 1. The
// text is what clients receive; the core never interprets it beyond
// exporting it as a file descriptor.
type Keymap struct {
	Name string
	Text string

	once sync.Once
	fd   int
	size uint32
	err  error
}

// Load reads a keymap text from path.
func Load(path string) (*Keymap, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("xkb: load keymap: %w", err)
	}
	return &Keymap{Name: path, Text: string(b)}, nil
}

// Default returns the built-in fallback keymap. It resolves key codes
// for a plain US layout with the modifier keys State tracks; sessions
// wanting more pass a compiled keymap file instead.
func Default() *Keymap {
	return &Keymap{Name: "default", Text: defaultKeymap}
}

const defaultKeymap = `xkb_keymap {
xkb_keycodes "evdev" {
	minimum = 8;
	maximum = 255;
	<ESC> = 9;
	<AD01> = 24;
	<AD02> = 25;
	<AD03> = 26;
	<RTRN> = 36;
	<LCTL> = 37;
	<LFSH> = 50;
	<RTSH> = 62;
	<LALT> = 64;
	<CAPS> = 66;
	<NMLK> = 77;
	<SPCE> = 65;
	<RCTL> = 105;
	<RALT> = 108;
	<LWIN> = 133;
	<RWIN> = 134;
};
xkb_types "basic" {
	virtual_modifiers NumLock;
	type "ONE_LEVEL" {
		modifiers = none;
		level_name[Level1] = "Any";
	};
	type "TWO_LEVEL" {
		modifiers = Shift;
		map[Shift] = Level2;
		level_name[Level1] = "Base";
		level_name[Level2] = "Shift";
	};
	type "ALPHABETIC" {
		modifiers = Shift+Lock;
		map[Shift] = Level2;
		map[Lock] = Level2;
		level_name[Level1] = "Base";
		level_name[Level2] = "Caps";
	};
};
xkb_compatibility "basic" {
	interpret Any+AnyOf(all) {
		action = SetMods(modifiers=modMapMods,clearLocks);
	};
	interpret Caps_Lock+AnyOfOrNone(all) {
		action = LockMods(modifiers=Lock);
	};
	interpret Num_Lock+AnyOfOrNone(all) {
		action = LockMods(modifiers=NumLock);
	};
};
xkb_symbols "us" {
	name[Group1] = "English (US)";
	key <ESC>  { [ Escape ] };
	key <AD01> { type = "ALPHABETIC", [ q, Q ] };
	key <AD02> { type = "ALPHABETIC", [ w, W ] };
	key <AD03> { type = "ALPHABETIC", [ e, E ] };
	key <RTRN> { [ Return ] };
	key <LCTL> { [ Control_L ] };
	key <LFSH> { [ Shift_L ] };
	key <RTSH> { [ Shift_R ] };
	key <LALT> { [ Alt_L ] };
	key <CAPS> { [ Caps_Lock ] };
	key <NMLK> { [ Num_Lock ] };
	key <SPCE> { [ space ] };
	key <RCTL> { [ Control_R ] };
	key <RALT> { [ Alt_R ] };
	key <LWIN> { [ Super_L ] };
	key <RWIN> { [ Super_R ] };
	modifier_map Shift   { Shift_L, Shift_R };
	modifier_map Lock    { Caps_Lock };
	modifier_map Control { Control_L, Control_R };
	modifier_map Mod1    { Alt_L, Alt_R };
	modifier_map Mod2    { Num_Lock };
	modifier_map Mod4    { Super_L, Super_R };
};
};
`
