package row

import "testing"

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	r := Row{A: 42, B: "hello"}
	buf := Serialize(r)
	got := Deserialize(buf[:])
	if got != r {
		t.Fatalf("round trip = %+v, want %+v", got, r)
	}
}

func TestEncodeKeyPadsAndTrims(t *testing.T) {
	k := EncodeKey("abc")
	if k.String() != "abc" {
		t.Fatalf("String() = %q, want %q", k.String(), "abc")
	}
	for i := 3; i < KeySize; i++ {
		if k[i] != 0 {
			t.Fatalf("k[%d] = %d, want 0", i, k[i])
		}
	}
}

func TestCompareOrdersLikeStrcmp(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"apple", "banana", -1},
		{"banana", "apple", 1},
		{"apple", "apple", 0},
		{"app", "apple", -1},
		{"apple", "app", 1},
	}
	for _, c := range cases {
		got := Compare(EncodeKey(c.a), EncodeKey(c.b))
		sign := func(n int) int {
			switch {
			case n < 0:
				return -1
			case n > 0:
				return 1
			default:
				return 0
			}
		}
		if sign(got) != c.want {
			t.Errorf("Compare(%q, %q) sign = %d, want %d", c.a, c.b, sign(got), c.want)
		}
	}
}

func TestMaxBLen(t *testing.T) {
	if MaxBLen != 11 {
		t.Fatalf("MaxBLen = %d, want 11", MaxBLen)
	}
}
