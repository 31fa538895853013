package master

import (
	"fmt"

	"github.com/reusee/places/syncs"
	"github.com/reusee/places/taivm"
)

type MessageKind uint8

const (
	KindCanonicalizeModulePath MessageKind = iota + 1
	KindCanonicalizedModulePath
	KindCanonicalizeSymbol
	KindCanonicalizedSymbol
	KindShutdown
)

func (k MessageKind) String() string {
	switch k {
	case KindCanonicalizeModulePath:
		return "canonicalize-module-path"
	case KindCanonicalizedModulePath:
		return "canonicalized-module-path"
	case KindCanonicalizeSymbol:
		return "canonicalize-symbol"
	case KindCanonicalizedSymbol:
		return "canonicalized-symbol"
	case KindShutdown:
		return "shutdown"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Message is the only thing crossing between the master and its clients.
// Requests carry Reply; responses carry the request Seq back.
type Message struct {
	Kind  MessageKind
	Seq   uint64
	Reply *syncs.Mailbox[Message]

	Table      taivm.SymbolTable
	SymbolKind taivm.SymbolKind
	Name       string

	Symbol     *CanonicalSymbol
	ModulePath *CanonicalModulePath
	Err        error
}

// CanonicalSymbol is the process-wide entry of a symbol. Entries are never
// mutated after creation.
type CanonicalSymbol struct {
	ID    uint64
	Table taivm.SymbolTable
	Kind  taivm.SymbolKind
	Name  string
}

type CanonicalModulePath struct {
	ID   uint64
	Name string
}
