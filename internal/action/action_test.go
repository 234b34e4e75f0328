package action

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := NewRegistry("menu", "pick", "pickmulti", "sug", "sug_item")

	token := Encode("pick", "dairy", "Milk")
	verb, rest, err := r.Decode(token)
	if err != nil {
		t.Fatalf("Decode(%q) error = %v", token, err)
	}
	if verb != "pick" || rest != "dairy_Milk" {
		t.Errorf("Decode(%q) = (%q, %q)", token, verb, rest)
	}

	verb, rest, err = r.Decode("menu")
	if err != nil {
		t.Fatalf("Decode(menu) error = %v", err)
	}
	if verb != "menu" || rest != "" {
		t.Errorf("Decode(menu) = (%q, %q)", verb, rest)
	}
}

func TestDecodeUnknown(t *testing.T) {
	r := NewRegistry("menu", "pick")

	if _, _, err := r.Decode("nosuchverb_1"); !errors.Is(err, ErrUnknown) {
		t.Errorf("Decode(unknown) error = %v, want ErrUnknown", err)
	}
	// A verb stem alone does not explain an unrelated extension.
	if _, _, err := r.Decode("pickle_5"); !errors.Is(err, ErrUnknown) {
		t.Errorf("Decode(pickle_5) error = %v, want ErrUnknown", err)
	}
}

// Two verbs sharing a stem must never both claim the same token; the
// longer, more specific verb wins.
func TestDecodeLongestVerbWins(t *testing.T) {
	r := NewRegistry("sug", "sug_item", "sug_item_multi")

	cases := []struct {
		token    string
		wantVerb string
		wantRest string
	}{
		{"sug_5", "sug", "5"},
		{"sug_item_dairy", "sug_item", "dairy"},
		{"sug_item_multi_dairy_Milk", "sug_item_multi", "dairy_Milk"},
	}
	for _, tc := range cases {
		verb, rest, err := r.Decode(tc.token)
		if err != nil {
			t.Fatalf("Decode(%q) error = %v", tc.token, err)
		}
		if verb != tc.wantVerb || rest != tc.wantRest {
			t.Errorf("Decode(%q) = (%q, %q), want (%q, %q)", tc.token, verb, rest, tc.wantVerb, tc.wantRest)
		}
	}
}

// Registration order must not matter; only length does.
func TestDecodeOrderIndependent(t *testing.T) {
	forward := NewRegistry("sug", "sug_item")
	backward := NewRegistry("sug_item", "sug")

	for _, r := range []*Registry{forward, backward} {
		verb, rest, err := r.Decode("sug_item_dairy")
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if verb != "sug_item" || rest != "dairy" {
			t.Errorf("Decode() = (%q, %q), want (sug_item, dairy)", verb, rest)
		}
	}
}

func TestSplitKeyedWithDelimiterInKey(t *testing.T) {
	keys := []string{"produce", "dairy", "meat_fish", "meat", "personal_care"}

	cases := []struct {
		rest     string
		wantKey  string
		wantTail string
	}{
		{"dairy_Milk", "dairy", "Milk"},
		{"meat_fish_Salmon", "meat_fish", "Salmon"},
		{"meat_Ground beef", "meat", "Ground beef"},
		{"personal_care_Shampoo", "personal_care", "Shampoo"},
		{"meat_fish", "meat_fish", ""},
	}
	for _, tc := range cases {
		key, tail, ok := SplitKeyed(tc.rest, keys)
		if !ok {
			t.Fatalf("SplitKeyed(%q) not ok", tc.rest)
		}
		if key != tc.wantKey || tail != tc.wantTail {
			t.Errorf("SplitKeyed(%q) = (%q, %q), want (%q, %q)", tc.rest, key, tail, tc.wantKey, tc.wantTail)
		}
	}

	if _, _, ok := SplitKeyed("unknowncat_Milk", keys); ok {
		t.Error("SplitKeyed() matched an unregistered key")
	}
}

func TestKeyCollides(t *testing.T) {
	// Encode("sug", "cat") yields "sug_cat", which the registry decodes
	// as the sug_cat verb. Any key with that property is unusable.
	cases := []struct {
		verb, key string
		want      bool
	}{
		{"sug", "cat", true},
		{"sug", "pending", true},
		{"sug", "app", true},
		{"cat", "new", true},
		{"sug", "dairy", false},
		{"sug", "meat_fish", false},
		{"cat", "spices", false},
	}
	for _, tc := range cases {
		if got := KeyCollides(tc.verb, tc.key); got != tc.want {
			t.Errorf("KeyCollides(%q, %q) = %v, want %v", tc.verb, tc.key, got, tc.want)
		}
	}
}

func TestArgs(t *testing.T) {
	if got := Args(""); got != nil {
		t.Errorf("Args(empty) = %v, want nil", got)
	}
	got := Args("5_bought")
	if len(got) != 2 || got[0] != "5" || got[1] != "bought" {
		t.Errorf("Args() = %v", got)
	}
}
