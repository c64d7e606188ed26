// SPDX-License-Identifier: Unlicense OR MIT

package xkb

import (
	"strings"
	"testing"

	"github.com/transomwm/transom/backend"
)

func TestShiftDepressed(t *testing.T) {
	s := NewState()
	mods, changed := s.Update(keyLeftShift, backend.Pressed)
	if !changed || mods.Depressed != ModShift {
		t.Fatalf("after press: mods %+v changed %v", mods, changed)
	}
	mods, changed = s.Update(keyLeftShift, backend.Released)
	if !changed || mods.Depressed != 0 {
		t.Fatalf("after release: mods %+v changed %v", mods, changed)
	}
}

func TestBothShiftsHeld(t *testing.T) {
	s := NewState()
	s.Update(keyLeftShift, backend.Pressed)
	mods, changed := s.Update(keyRightShift, backend.Pressed)
	if changed {
		t.Errorf("second shift reported a change: %+v", mods)
	}
	mods, changed = s.Update(keyLeftShift, backend.Released)
	if changed || mods.Depressed != ModShift {
		t.Errorf("first shift release dropped the modifier: %+v changed %v", mods, changed)
	}
	mods, changed = s.Update(keyRightShift, backend.Released)
	if !changed || mods.Depressed != 0 {
		t.Errorf("last shift release kept the modifier: %+v changed %v", mods, changed)
	}
}

func TestCapsLockToggles(t *testing.T) {
	s := NewState()
	mods, changed := s.Update(keyCapsLock, backend.Pressed)
	if !changed || mods.Locked != ModLock {
		t.Fatalf("caps press: mods %+v changed %v", mods, changed)
	}
	mods, changed = s.Update(keyCapsLock, backend.Released)
	if changed {
		t.Fatalf("caps release reported a change: %+v", mods)
	}
	mods, changed = s.Update(keyCapsLock, backend.Pressed)
	if !changed || mods.Locked != 0 {
		t.Fatalf("second caps press did not unlock: %+v changed %v", mods, changed)
	}
}

func TestPlainKeysDoNotChangeModifiers(t *testing.T) {
	s := NewState()
	const keyA = 30
	if mods, changed := s.Update(keyA, backend.Pressed); changed || mods != (Modifiers{}) {
		t.Errorf("plain key changed modifiers: %+v", mods)
	}
}

func TestCombinedSnapshot(t *testing.T) {
	s := NewState()
	s.Update(keyCapsLock, backend.Pressed)
	s.Update(keyLeftCtrl, backend.Pressed)
	mods := s.Modifiers()
	want := Modifiers{Depressed: ModControl, Locked: ModLock}
	if mods != want {
		t.Errorf("snapshot = %+v, want %+v", mods, want)
	}
}

func TestDefaultKeymapShape(t *testing.T) {
	k := Default()
	if !strings.HasPrefix(k.Text, "xkb_keymap {") {
		t.Errorf("keymap text does not open an xkb_keymap block")
	}
	for _, section := range []string{"xkb_keycodes", "xkb_types", "xkb_compatibility", "xkb_symbols"} {
		if !strings.Contains(k.Text, section) {
			t.Errorf("keymap text missing %s section", section)
		}
	}
}
