package access

import (
	"testing"

	"github.com/stlalpha/warroom/internal/identity"
)

type fakeUnits map[string]string

func (f fakeUnits) OperatorUnit(username string) (string, bool) {
	u, ok := f[username]
	return u, ok
}

type fakeGroups map[string][]string

func (f fakeGroups) IsMember(username, groupName string) bool {
	for _, m := range f[groupName] {
		if m == username {
			return true
		}
	}
	return false
}

func testEvaluator() *Evaluator {
	return NewEvaluator(
		fakeUnits{"owner": "Apollo", "apollomate": "Apollo"},
		fakeGroups{"Recon": {"owner", "scout"}},
	)
}

func TestCanViewMatrix(t *testing.T) {
	e := testEvaluator()

	owner := Requester{Username: "owner", Rank: identity.RankRecruit, Unit: "Apollo"}
	apolloMate := Requester{Username: "apollomate", Rank: identity.RankSoldier, Unit: "Apollo"}
	outsider := Requester{Username: "outsider", Rank: identity.RankSoldier, Unit: "Gemini"}
	officer := Requester{Username: "officer", Rank: identity.RankOfficer, Unit: "Gemini"}
	commander := Requester{Username: "commander", Rank: identity.RankCommander, Unit: "Gemini"}
	scout := Requester{Username: "scout", Rank: identity.RankRecruit, Unit: "Gemini"}

	tests := []struct {
		name    string
		typ     Type
		minRank identity.Rank
		group   string
		req     Requester
		want    bool
	}{
		{"owner sees private", TypePrivate, identity.RankRecruit, "", owner, true},
		{"owner sees mission report", TypeMissionReport, identity.RankRecruit, "", owner, true},
		{"owner sees telemetry", TypeAssetTelemetry, identity.RankRecruit, "", owner, true},
		{"owner sees classified regardless of rank", TypeClassified, identity.RankCommander, "", owner, true},

		{"public visible to anyone", TypePublic, identity.RankRecruit, "", outsider, true},

		{"unit visible to same unit", TypeUnit, identity.RankRecruit, "", apolloMate, true},
		{"unit hidden from other unit", TypeUnit, identity.RankRecruit, "", outsider, false},

		{"classified hidden below min rank", TypeClassified, identity.RankOfficer, "", outsider, false},
		{"classified visible at min rank", TypeClassified, identity.RankOfficer, "", officer, true},
		{"classified visible above min rank", TypeClassified, identity.RankOfficer, "", commander, true},

		{"group message visible to member", TypeGroupMessage, identity.RankRecruit, "Recon", scout, true},
		{"group message hidden from non-member", TypeGroupMessage, identity.RankRecruit, "Recon", outsider, false},
		{"group message with missing group hidden", TypeGroupMessage, identity.RankRecruit, "Phantom", scout, false},

		{"private hidden from non-owner", TypePrivate, identity.RankRecruit, "", commander, false},
		{"mission report hidden from non-owner", TypeMissionReport, identity.RankRecruit, "", commander, false},
		{"telemetry hidden from non-owner", TypeAssetTelemetry, identity.RankRecruit, "", commander, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.CanView("owner", tt.typ, tt.minRank, tt.group, tt.req)
			if got != tt.want {
				t.Errorf("CanView(%s) = %t, want %t", tt.typ, got, tt.want)
			}
		})
	}
}

func TestUnitRuleUsesOwnerUnitNotRequesterAssertion(t *testing.T) {
	// The owner's unit comes from the directory at evaluation time.
	e := NewEvaluator(fakeUnits{}, fakeGroups{})
	req := Requester{Username: "someone", Rank: identity.RankCommander, Unit: "Apollo"}
	if e.CanView("ghost", TypeUnit, identity.RankRecruit, "", req) {
		t.Error("unit record with unresolvable owner must be denied")
	}
}

func TestTypeFromOption(t *testing.T) {
	if typ, ok := TypeFromOption(1); !ok || typ != TypePublic {
		t.Errorf("TypeFromOption(1) = %s, %t", typ, ok)
	}
	if typ, ok := TypeFromOption(7); !ok || typ != TypeGroupMessage {
		t.Errorf("TypeFromOption(7) = %s, %t", typ, ok)
	}
	if typ, ok := TypeFromOption(8); ok || typ != TypePublic {
		t.Errorf("TypeFromOption(8) = %s, %t; want Public, false", typ, ok)
	}
}
