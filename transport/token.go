package transport

// Token is a stable, opaque identifier for a live connection. Callers address
// connections through tokens instead of socket handles.
//
// A token is unique among simultaneously live connections and stable for a
// connection's lifetime. Tokens are recycled only after the Disconnected event
// for the previous owner has been emitted.
type Token uint32

// InvalidToken is the zero Token; it never identifies a live connection.
const InvalidToken Token = 0

// tokenPool allocates tokens starting at 1 and recycles freed ones.
type tokenPool struct {
	next uint32
	free []Token
}

func (p *tokenPool) alloc() Token {
	if n := len(p.free); n > 0 {
		tok := p.free[n-1]
		p.free = p.free[:n-1]

		return tok
	}
	p.next++

	return Token(p.next)
}

func (p *tokenPool) release(tok Token) {
	p.free = append(p.free, tok)
}
