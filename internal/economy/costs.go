package economy

import "fmt"

// BuildKind enumerates the things a player can spend resources on.
type BuildKind uint8

const (
	BuildSettlement BuildKind = iota
	BuildRoad
	BuildCity // Upgrade of an existing settlement
)

var buildNames = [...]string{"settlement", "road", "city"}

func (k BuildKind) String() string {
	if int(k) >= len(buildNames) {
		return fmt.Sprintf("build(%d)", uint8(k))
	}
	return buildNames[k]
}

// Fixed cost table.
var (
	SettlementCost = Bundle{Brick: 1, Lumber: 1, Grain: 1, Wool: 1}
	RoadCost       = Bundle{Brick: 1, Lumber: 1}
	CityCost       = Bundle{Ore: 3, Grain: 2}
)

// CostOf returns the cost bundle for a build kind.
func CostOf(kind BuildKind) Bundle {
	switch kind {
	case BuildSettlement:
		return SettlementCost
	case BuildRoad:
		return RoadCost
	case BuildCity:
		return CityCost
	default:
		return Bundle{}
	}
}

// CanAfford is a pure predicate over a balance.
func CanAfford(balance, cost Bundle) bool {
	return balance.Covers(cost)
}
