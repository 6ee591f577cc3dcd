package transport

import "slices"

type recipientMode uint8

const (
	toAll recipientMode = iota
	toSingle
	toAllExcept
	toOnly
	toAllExceptMany
)

// Recipient determines which live established connections receive a queued
// outbound packet.
type Recipient struct {
	mode   recipientMode
	token  Token
	tokens []Token
}

// ToAll addresses every established connection.
func ToAll() Recipient {
	return Recipient{mode: toAll}
}

// ToSingle addresses one connection. A token that does not resolve to a live
// established connection makes the send a no-op, not an error.
func ToSingle(tok Token) Recipient {
	return Recipient{mode: toSingle, token: tok}
}

// ToAllExcept addresses every established connection except one.
func ToAllExcept(tok Token) Recipient {
	return Recipient{mode: toAllExcept, token: tok}
}

// ToOnly addresses exactly the listed connections.
func ToOnly(toks ...Token) Recipient {
	return Recipient{mode: toOnly, tokens: toks}
}

// ToAllExceptMany addresses every established connection except the listed ones.
func ToAllExceptMany(toks ...Token) Recipient {
	return Recipient{mode: toAllExceptMany, tokens: toks}
}

// matches reports whether the recipient addresses the given token.
func (r Recipient) matches(tok Token) bool {
	switch r.mode {
	case toAll:
		return true
	case toSingle:
		return r.token == tok
	case toAllExcept:
		return r.token != tok
	case toOnly:
		return slices.Contains(r.tokens, tok)
	case toAllExceptMany:
		return !slices.Contains(r.tokens, tok)
	default:
		return false
	}
}
