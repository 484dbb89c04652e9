package filter

import (
	"testing"

	"github.com/Minorli/ob-comparator-sub002/common"
)

func TestGateMatchType(t *testing.T) {
	tests := []struct {
		name      string
		typeNames []string
		check     common.ObjectType
		want      bool
	}{
		{name: "empty allows all", typeNames: nil, check: common.ObjectTypeTable, want: true},
		{name: "allowlisted", typeNames: []string{"table", "index"}, check: common.ObjectTypeIndex, want: true},
		{name: "not allowlisted", typeNames: []string{"table"}, check: common.ObjectTypeTrigger, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGate(tt.typeNames, true)
			if err != nil {
				t.Fatalf("NewGate() error = %v", err)
			}
			if got := g.MatchType(tt.check); got != tt.want {
				t.Errorf("MatchType(%s) = %v, want %v", tt.check, got, tt.want)
			}
		})
	}
}

func TestGateUnknownType(t *testing.T) {
	if _, err := NewGate([]string{"TABLESPACE"}, false); err == nil {
		t.Errorf("NewGate() expected error for unknown object type")
	}
}
