package asm

// labels.go is the label pass: a single walk over the tokenised script that
// tracks the program-word cursor and resolves header/const/variable/alloc
// labels and ISA traits. Grounded on the teacher's parser.go symbol-table
// pass (SymbolTable map[string]Word, Add, Offset), generalized from LC-3's
// single label kind to this spec's five.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smoynes/sixteen/internal/vm"
)

// LabelKind distinguishes the five label variants §3 defines.
type LabelKind uint8

const (
	LabelHeader LabelKind = iota
	LabelConst
	LabelVariable
	LabelTrait
	LabelAlloc
)

// headerKinds are the `! <kind>` words that declare a Header label at the
// current cursor with no associated value.
var headerKinds = map[string]bool{
	"function": true, "header": true, "loop": true, "end": true,
	"condition": true, "true": true, "false": true, "if": true, "else": true,
	"label": true,
}

// SymbolTable maps a label name to its resolved word value: a program
// address for Header/Alloc labels, a literal for Const/Variable labels.
// Names are case-insensitive, stored upper-cased, mirroring the teacher's
// SymbolTable.Add.
type SymbolTable map[string]vm.Word

// Get looks up a symbol, case-insensitively.
func (s SymbolTable) Get(name string) (vm.Word, bool) {
	loc, ok := s[strings.ToUpper(name)]
	return loc, ok
}

// Add records a symbol, rejecting redefinition per spec.md §3 ("Labels are
// global and may not be redefined").
func (s SymbolTable) Add(name string, value vm.Word) error {
	name = strings.ToUpper(name)

	if _, exists := s[name]; exists {
		return fmt.Errorf("%w: %q", ErrRedefined, name)
	}

	s[name] = value

	return nil
}

var (
	// ErrRedefined causes a SyntaxError if a label name is declared twice.
	ErrRedefined = errors.New("label redefined")

	// ErrLabelKind causes a SyntaxError if a `!` line names an unrecognised
	// label kind.
	ErrLabelKind = errors.New("label kind error")

	// ErrTrait causes a SyntaxError if a `.` line names an unrecognised
	// trait, or a trait is missing its value.
	ErrTrait = errors.New("trait error")

	// ErrMacro is returned when the source uses `!macro`, which this
	// assembler does not implement.
	ErrMacro = errors.New("macros are not supported")
)

// Traits holds the ISA traits declared by `.` lines: ram_size, name,
// program_size, page. Values are stored as the raw literal text, since
// `name` is a string and the rest are numbers.
type Traits map[string]string

var traitNames = map[string]bool{
	"ram_size": true, "name": true, "program_size": true, "page": true,
}

// LabelPass walks tokenised lines, tracking the program-word cursor and
// producing a symbol table and a trait set. It starts the cursor at 3 to
// reserve the OS header.
type LabelPass struct {
	Symbols SymbolTable
	Traits  Traits

	cursor vm.Word
	pos    int
	errs   []error
}

// NewLabelPass creates an empty label pass, cursor at the OS header size.
func NewLabelPass() *LabelPass {
	return &LabelPass{
		Symbols: make(SymbolTable),
		Traits:  make(Traits),
		cursor:  3,
	}
}

// Run processes every tokenised line in order and returns the accumulated
// errors, if any; per spec.md §4.2, no instruction encoding is attempted
// when any error exists.
func (lp *LabelPass) Run(lines [][]Token) error {
	for _, tokens := range lines {
		lp.pos++
		lp.line(tokens)
	}

	return errors.Join(lp.errs...)
}

func (lp *LabelPass) fail(err error) {
	lp.errs = append(lp.errs, &SyntaxError{Loc: lp.cursor, Pos: vm.Word(lp.pos), Err: err})
}

func (lp *LabelPass) line(tokens []Token) {
	if len(tokens) == 0 {
		return
	}

	switch tokens[0].Text {
	case "!":
		lp.label(tokens)
	case ".":
		lp.trait(tokens)
	default:
		lp.cursor += 3
	}
}

func (lp *LabelPass) label(tokens []Token) {
	if len(tokens) < 3 {
		lp.fail(fmt.Errorf("%w: missing label kind or name", ErrLabelKind))
		return
	}

	kind := strings.ToLower(tokens[1].Text)
	name := tokens[2].Text

	switch {
	case kind == "macro":
		lp.fail(ErrMacro)
	case headerKinds[kind]:
		if err := lp.Symbols.Add(name, lp.cursor); err != nil {
			lp.fail(err)
		}
	case kind == "define":
		if len(tokens) < 4 {
			lp.fail(fmt.Errorf("%w: !define missing value", ErrLabelKind))
			return
		}

		val, err := resolveLiteral(tokens[3].Text, lp.Symbols)
		if err != nil {
			lp.fail(err)
			return
		}

		if err := lp.Symbols.Add(name, vm.Word(val)); err != nil {
			lp.fail(err)
		}
	case kind == "const":
		if len(tokens) < 4 {
			lp.fail(fmt.Errorf("%w: !const missing value", ErrLabelKind))
			return
		}

		val, err := resolveLiteral(tokens[3].Text, lp.Symbols)
		if err != nil {
			lp.fail(err)
			return
		}

		if err := lp.Symbols.Add(name, vm.Word(val)); err != nil {
			lp.fail(err)
		}
	case kind == "alloc":
		if len(tokens) < 4 {
			lp.fail(fmt.Errorf("%w: !alloc missing word count", ErrLabelKind))
			return
		}

		words, err := resolveLiteral(tokens[3].Text, lp.Symbols)
		if err != nil {
			lp.fail(err)
			return
		}

		if err := lp.Symbols.Add(name, lp.cursor); err != nil {
			lp.fail(err)
			return
		}

		lp.cursor += vm.Word(words)
	default:
		lp.fail(fmt.Errorf("%w: %q", ErrLabelKind, kind))
	}
}

func (lp *LabelPass) trait(tokens []Token) {
	if len(tokens) < 2 {
		lp.fail(fmt.Errorf("%w: missing trait name", ErrTrait))
		return
	}

	name := strings.ToLower(tokens[1].Text)

	if !traitNames[name] {
		lp.fail(fmt.Errorf("%w: %q", ErrTrait, name))
		return
	}

	if len(tokens) < 3 {
		lp.fail(fmt.Errorf("%w: %q missing value", ErrTrait, name))
		return
	}

	value := tokens[2].Text
	lp.Traits[name] = value

	if name == "page" {
		val, err := resolveLiteral(value, lp.Symbols)
		if err != nil {
			lp.fail(err)
			return
		}

		lp.cursor = vm.Word(val)
	}
}
