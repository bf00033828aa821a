// Package access decides record visibility from the combination of record
// type, requester identity, requester rank, requester unit and group
// membership.
package access

import (
	"github.com/stlalpha/warroom/internal/identity"
	"github.com/stlalpha/warroom/internal/logging"
)

// Type classifies a block and selects which visibility rule applies.
type Type int32

const (
	TypePublic Type = iota
	TypePrivate
	TypeUnit
	TypeClassified
	TypeMissionReport
	TypeAssetTelemetry
	TypeGroupMessage

	typeCount
)

// NumTypes is the number of defined block types, for menu rendering.
const NumTypes = int(typeCount)

func (t Type) String() string {
	switch t {
	case TypePublic:
		return "Public"
	case TypePrivate:
		return "Private"
	case TypeUnit:
		return "Unit"
	case TypeClassified:
		return "Classified"
	case TypeMissionReport:
		return "Mission Report"
	case TypeAssetTelemetry:
		return "Asset Telemetry"
	case TypeGroupMessage:
		return "Group Message"
	default:
		return "Unknown"
	}
}

// TypeFromOption maps a 1-based menu selection to a Type. Out-of-range
// selections report ok=false; callers default those to Public.
func TypeFromOption(option int) (Type, bool) {
	if option < 1 || option > NumTypes {
		return TypePublic, false
	}
	return Type(option - 1), true
}

// Requester is the identity context a visibility decision is made for.
type Requester struct {
	Username string
	Rank     identity.Rank
	Unit     string
}

// UnitResolver resolves an operator's unit at evaluation time. Unit-typed
// records are scoped by the owner's current unit, never a cached one.
type UnitResolver interface {
	OperatorUnit(username string) (string, bool)
}

// MembershipChecker answers group membership queries.
type MembershipChecker interface {
	IsMember(username, groupName string) bool
}

// Evaluator applies the visibility rule set.
type Evaluator struct {
	units  UnitResolver
	groups MembershipChecker
}

// NewEvaluator creates an evaluator backed by the given directories.
func NewEvaluator(units UnitResolver, groups MembershipChecker) *Evaluator {
	return &Evaluator{units: units, groups: groups}
}

// CanView decides visibility of a record owned by owner with the given
// type, minimum access rank (Classified only) and destination group
// (GroupMessage only). Rules are evaluated in fixed priority order and
// the first match grants; nothing can revoke a grant:
//
//  1. requester is the owner: granted for every type
//  2. Public: granted to anyone
//  3. Unit: granted iff the owner's unit equals the requester's unit
//  4. Classified: granted iff requester rank >= the minimum access rank
//  5. GroupMessage: granted iff the requester belongs to the group
//
// Private, Mission Report and Asset Telemetry records have no rule beyond
// ownership and are denied to everyone else.
func (e *Evaluator) CanView(owner string, typ Type, minRank identity.Rank, groupName string, req Requester) bool {
	if owner == req.Username {
		return true
	}
	switch typ {
	case TypePublic:
		return true
	case TypeUnit:
		ownerUnit, ok := e.units.OperatorUnit(owner)
		granted := ok && ownerUnit == req.Unit
		logging.Debug("access: unit rule for owner %q: owner unit %q vs requester unit %q -> %t",
			owner, ownerUnit, req.Unit, granted)
		return granted
	case TypeClassified:
		return req.Rank >= minRank
	case TypeGroupMessage:
		return e.groups.IsMember(req.Username, groupName)
	}
	return false
}
