package taxlot

import "fmt"

// CostBasisMethod defines the method for allocating sold shares against tax lots.
type CostBasisMethod int

const (
	// AverageCost blends the basis of all open lots into a single per-share
	// basis. Permitted for mutual fund positions only.
	AverageCost CostBasisMethod = iota
	// FIFO (First-In, First-Out) sells the oldest lots first.
	FIFO
	// LIFO (Last-In, First-Out) sells the newest lots first.
	LIFO
	// SpecificID sells exactly the lots the taxpayer designates.
	SpecificID
)

func (m CostBasisMethod) String() string {
	switch m {
	case AverageCost:
		return "average"
	case FIFO:
		return "fifo"
	case LIFO:
		return "lifo"
	case SpecificID:
		return "specific-id"
	default:
		return "unknown"
	}
}

// ParseCostBasisMethod parses a string into a CostBasisMethod.
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	switch s {
	case "average":
		return AverageCost, nil
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	case "specific-id":
		return SpecificID, nil
	default:
		return 0, fmt.Errorf("unknown cost basis method: %q", s)
	}
}
