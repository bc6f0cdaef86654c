package tiendanube

import (
	"encoding/json"
	"testing"
)

func TestFlexIntDecoding(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: `3`, want: 3},
		{in: `"12"`, want: 12},
		{in: `4.0`, want: 4},
		{in: `null`, want: 0},
		{in: `""`, want: 0},
		{in: `2.5`, wantErr: true},
		{in: `"abc"`, wantErr: true},
		{in: `true`, wantErr: true},
	}

	for _, tc := range cases {
		var got flexInt
		err := json.Unmarshal([]byte(tc.in), &got)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.in, err)
			continue
		}
		if int64(got) != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestFlexStringDecoding(t *testing.T) {
	cases := map[string]string{
		`"abc"`:          "abc",
		`1878562584`:     "1878562584",
		`null`:           "",
		`12345678901234`: "12345678901234",
	}

	for in, want := range cases {
		var got flexString
		if err := json.Unmarshal([]byte(in), &got); err != nil {
			t.Errorf("%s: unexpected error %v", in, err)
			continue
		}
		if string(got) != want {
			t.Errorf("%s: expected %q, got %q", in, want, got)
		}
	}

	var bad flexString
	if err := json.Unmarshal([]byte(`{"a":1}`), &bad); err == nil {
		t.Error("expected error for object")
	}
}
