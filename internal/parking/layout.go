package parking

import (
	"strings"

	"github.com/pkg/errors"
)

// Layout lists the spot sizes of each floor, bottom floor first.
type Layout [][]SpotSize

// ParseLayout reads floors separated by ',' or '/', each floor written as a
// run of S, M and L letters. "SML,SSM" is two floors with three spots each.
func ParseLayout(s string) (Layout, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("layout is empty")
	}

	rawFloors := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '/'
	})
	if len(rawFloors) == 0 {
		return nil, errors.New("layout has no floors")
	}

	layout := make(Layout, 0, len(rawFloors))
	for i, raw := range rawFloors {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, errors.Errorf("floor %d has no spots", i+1)
		}

		sizes := make([]SpotSize, 0, len(raw))
		for _, r := range strings.ToUpper(raw) {
			size, err := parseSpotSize(r)
			if err != nil {
				return nil, errors.Wrapf(err, "floor %d", i+1)
			}
			sizes = append(sizes, size)
		}
		layout = append(layout, sizes)
	}

	return layout, nil
}

func parseSpotSize(r rune) (SpotSize, error) {
	switch r {
	case 'S':
		return Small, nil
	case 'M':
		return Medium, nil
	case 'L':
		return Large, nil
	default:
		return 0, errors.Errorf("unknown spot size %q", r)
	}
}

func (l Layout) Floors() []*Floor {
	floors := make([]*Floor, len(l))
	for i, sizes := range l {
		floors[i] = NewFloor(i+1, sizes...)
	}
	return floors
}

func (l Layout) Capacity() int {
	total := 0
	for _, sizes := range l {
		total += len(sizes)
	}
	return total
}

func (l Layout) String() string {
	floors := make([]string, len(l))
	for i, sizes := range l {
		var b strings.Builder
		for _, size := range sizes {
			b.WriteByte(strings.ToUpper(size.String())[0])
		}
		floors[i] = b.String()
	}
	return strings.Join(floors, ",")
}
