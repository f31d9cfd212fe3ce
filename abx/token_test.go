package abx

import "testing"

func TestTokenPacking(t *testing.T) {
	tok := MakeToken(Attribute, TypeIntHex)
	if tok.Command() != Attribute {
		t.Errorf("Command() = %v, want ATTRIBUTE", tok.Command())
	}
	if tok.Type() != TypeIntHex {
		t.Errorf("Type() = %v, want INT_HEX", tok.Type())
	}
	if got, want := tok.String(), "ATTRIBUTE|INT_HEX"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestTokenCheck(t *testing.T) {
	tests := []struct {
		name string
		tok  Token
		ok   bool
	}{
		{"start document", MakeToken(StartDocument, TypeNull), true},
		{"end document", MakeToken(EndDocument, TypeNull), true},
		{"start tag interned", MakeToken(StartTag, TypeStringInterned), true},
		{"end tag interned", MakeToken(EndTag, TypeStringInterned), true},
		{"text string", MakeToken(Text, TypeString), true},
		{"comment string", MakeToken(Comment, TypeString), true},
		{"attribute int", MakeToken(Attribute, TypeInt), true},
		{"attribute bool", MakeToken(Attribute, TypeBooleanTrue), true},
		{"attribute bytes", MakeToken(Attribute, TypeBytesBase64), true},

		{"start document typed", MakeToken(StartDocument, TypeString), false},
		{"start tag plain string", MakeToken(StartTag, TypeString), false},
		{"text null", MakeToken(Text, TypeNull), false},
		{"attribute null", MakeToken(Attribute, TypeNull), false},
		{"unknown command", Token(0x0B | uint8(TypeString)), false},
		{"unknown type", Token(uint8(Attribute) | 14<<4), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tok.Check()
			if tt.ok && err != nil {
				t.Errorf("Check(%v) = %v, want nil", tt.tok, err)
			}
			if !tt.ok && err == nil {
				t.Errorf("Check(%v) = nil, want error", tt.tok)
			}
		})
	}
}
