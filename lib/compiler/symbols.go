package compiler

// DefaultBaseAddress is the address given to the first declared identifier.
const DefaultBaseAddress = 9000

type Symbol struct {
	Name    string `json:"name"`
	Address int    `json:"address"`
	Type    string `json:"type"`
}

// SymbolTable assigns consecutive addresses to names in first-declaration
// order. Re-declaring a name is a no-op.
type SymbolTable struct {
	next    int
	entries []Symbol
	byName  map[string]int
}

func NewSymbolTable(base int) *SymbolTable {
	return &SymbolTable{
		next:   base,
		byName: make(map[string]int),
	}
}

// Declare inserts name unless it is already present. It returns the entry for
// name and whether it was newly inserted.
func (s *SymbolTable) Declare(name, typ string) (Symbol, bool) {
	if i, ok := s.byName[name]; ok {
		return s.entries[i], false
	}
	sym := Symbol{Name: name, Address: s.next, Type: typ}
	s.byName[name] = len(s.entries)
	s.entries = append(s.entries, sym)
	s.next++
	return sym, true
}

func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Symbol{}, false
	}
	return s.entries[i], true
}

func (s *SymbolTable) Len() int {
	return len(s.entries)
}

// Symbols returns a copy of the entries in insertion order.
func (s *SymbolTable) Symbols() []Symbol {
	out := make([]Symbol, len(s.entries))
	copy(out, s.entries)
	return out
}
