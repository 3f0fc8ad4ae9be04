package rope

import (
	"testing"
	"unicode/utf16"
)

// FuzzEdits replays a byte-coded script of inserts and deletes against a
// Text and a plain slice and compares the results after every step.
func FuzzEdits(f *testing.F) {
	f.Add("hello world", []byte{0, 5, 1, 2, 3, 0, 0, 9})
	f.Add("", []byte{0, 0, 0, 0, 0, 0})
	f.Add("line\r\nline\nline\r", []byte{1, 4, 6, 0, 200, 1, 1, 0, 0})
	f.Fuzz(func(t *testing.T, initial string, script []byte) {
		txt := FromString(initial)
		ref := utf16.Encode([]rune(initial))
		for i := 0; i+2 < len(script); i += 3 {
			op, a, b := script[i]%2, int(script[i+1]), int(script[i+2])
			switch op {
			case 0:
				idx := a % (len(ref) + 1)
				ins := make([]uint16, b%130)
				for j := range ins {
					ins[j] = uint16('a' + (j+b)%26)
					if (j+a)%17 == 0 {
						ins[j] = 'ж'
					}
				}
				txt = txt.Insert(idx, FromUnits(ins))
				ref = append(ref[:idx:idx], append(ins, ref[idx:]...)...)
			case 1:
				if len(ref) == 0 {
					continue
				}
				start := a % len(ref)
				end := start + b%(len(ref)-start+1)
				txt = txt.Delete(start, end)
				ref = append(ref[:start:start], ref[end:]...)
			}
			if txt.Len() != len(ref) {
				t.Fatalf("step %d: Len = %d, want %d", i/3, txt.Len(), len(ref))
			}
			if !equalUnits(txt.Units(), ref) {
				t.Fatalf("step %d: content diverged", i/3)
			}
		}
	})
}
