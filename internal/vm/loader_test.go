package vm

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/smoynes/sixteen/internal/log"
)

type loaderHarness struct {
	*testing.T
}

func (*loaderHarness) Logger() *log.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestLoader_Load(tt *testing.T) {
	tt.Parallel()

	tcs := []struct {
		name      string
		image     Image
		expLoaded int
		expErr    error
	}{{
		name: "Ok",
		image: Image{Words: []Word{
			0x0100, 0x0003, 0x0000,
			Word(Ldi)<<8, 0x00, 0x2a,
		}},
		expLoaded: 6,
	}, {
		name:      "too short",
		image:     Image{Words: []Word{0x0001}},
		expErr:    ErrObjectLoader,
		expLoaded: 0,
	}}

	for _, tc := range tcs {
		tc := tc

		tt.Run(tc.name, func(tt *testing.T) {
			t := loaderHarness{tt}
			t.Parallel()

			machine := New(WithLogger(t.Logger()))
			loader := NewLoader(machine)

			loaded, err := loader.Load(tc.image)

			if loaded != tc.expLoaded {
				t.Errorf("wrong loaded count: got: %d != want: %d", loaded, tc.expLoaded)
			}

			switch {
			case tc.expErr == nil && err != nil:
				t.Error("unexpected error:", err)
			case tc.expErr != nil && err == nil:
				t.Error("expected error:", "want:", tc.expErr, "got:", err)
			case tc.expErr != nil && !errors.Is(err, tc.expErr):
				t.Error("unexpected error:", "want:", tc.expErr, "got:", err)
			}

			if tc.expErr == nil {
				if got := machine.Reg[RamSize]; got != tc.image.Words[0] {
					t.Errorf("RamSize not set: got: %s", got)
				}

				if got := machine.Reg[ProgramSize]; got != tc.image.Words[1] {
					t.Errorf("ProgramSize not set: got: %s", got)
				}

				if got := machine.RAM[3]; got != tc.image.Words[3] {
					t.Errorf("instruction slot not loaded: got: %s", got)
				}
			}
		})
	}
}

func TestImage_MarshalUnmarshal(t *testing.T) {
	t.Parallel()

	orig := Image{Words: []Word{0x0100, 0x0003, 0x0000, Word(Kill) << 8, 0, 0}}

	b, err := orig.MarshalBinary()
	if err != nil {
		t.Fatal("marshal:", err)
	}

	var got Image
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatal("unmarshal:", err)
	}

	if len(got.Words) != len(orig.Words) {
		t.Fatalf("length mismatch: want: %d, got: %d", len(orig.Words), len(got.Words))
	}

	for i := range orig.Words {
		if got.Words[i] != orig.Words[i] {
			t.Errorf("word %d: want: %s, got: %s", i, orig.Words[i], got.Words[i])
		}
	}
}

func TestImage_UnmarshalBinary_bad(t *testing.T) {
	t.Parallel()

	var img Image
	if err := img.UnmarshalBinary([]byte{0x01}); !errors.Is(err, ErrObjectLoader) {
		t.Errorf("want ErrObjectLoader, got: %v", err)
	}
}
