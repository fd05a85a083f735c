package subscription

import (
	"encoding/json"
	"testing"
)

func TestLimit_Decrement(t *testing.T) {
	tests := []struct {
		name  string
		start Limit
		times int
		want  Limit
	}{
		{"finite decrements", Finite(5), 3, Finite(2)},
		{"finite floors at zero", Finite(1), 4, Finite(0)},
		{"unbounded stays unbounded", Unbounded(), 100, Unbounded()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.start
			for i := 0; i < tt.times; i++ {
				got = got.Decrement()
			}
			if !got.Equal(tt.want) {
				t.Errorf("Decrement() x%d = %v, want %v", tt.times, got, tt.want)
			}
		})
	}
}

func TestLimit_Exceeded(t *testing.T) {
	tests := []struct {
		limit Limit
		used  int64
		want  bool
	}{
		{Finite(25), 24, false},
		{Finite(25), 25, true},
		{Finite(25), 30, true},
		{Finite(0), 0, true},
		{Unbounded(), 1 << 40, false},
	}

	for _, tt := range tests {
		if got := tt.limit.Exceeded(tt.used); got != tt.want {
			t.Errorf("%v.Exceeded(%d) = %v, want %v", tt.limit, tt.used, got, tt.want)
		}
	}
}

func TestLimit_Less(t *testing.T) {
	if !Finite(1).Less(Finite(2)) {
		t.Error("1 < 2 should hold")
	}
	if !Finite(1 << 60).Less(Unbounded()) {
		t.Error("finite < unbounded should hold")
	}
	if Unbounded().Less(Unbounded()) {
		t.Error("unbounded < unbounded should not hold")
	}
}

func TestLimit_JSON(t *testing.T) {
	tests := []struct {
		limit Limit
		wire  string
	}{
		{Finite(30), `30`},
		{Unbounded(), `"unlimited"`},
	}

	for _, tt := range tests {
		b, err := json.Marshal(tt.limit)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		if string(b) != tt.wire {
			t.Errorf("Marshal(%v) = %s, want %s", tt.limit, b, tt.wire)
		}

		var back Limit
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if !back.Equal(tt.limit) {
			t.Errorf("round trip = %v, want %v", back, tt.limit)
		}
	}
}

func TestLimit_UnmarshalRejects(t *testing.T) {
	for _, in := range []string{`-1`, `"lots"`, `true`} {
		var l Limit
		if err := json.Unmarshal([]byte(in), &l); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", in)
		}
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in      string
		want    Limit
		wantErr bool
	}{
		{"12", Finite(12), false},
		{" unlimited ", Unbounded(), false},
		{"inf", Unbounded(), false},
		{"-3", Limit{}, true},
		{"many", Limit{}, true},
	}

	for _, tt := range tests {
		got, err := ParseLimit(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLimit(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("ParseLimit(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
