package views

import "github.com/MrSnakeDoc/tabshell/internal/domain"

// TabCounts splits the tab total by privacy.
type TabCounts struct {
	Regular int `json:"regular"`
	Private int `json:"private"`
}

func (c TabCounts) Total() int { return c.Regular + c.Private }

func CountTabs(tabs []domain.Tab) TabCounts {
	var c TabCounts
	for _, t := range tabs {
		if t.IsPrivate {
			c.Private++
		} else {
			c.Regular++
		}
	}
	return c
}

// TabsByPrivacy returns the tabs matching private, in list order.
func TabsByPrivacy(tabs []domain.Tab, private bool) []domain.Tab {
	var out []domain.Tab
	for _, t := range tabs {
		if t.IsPrivate == private {
			out = append(out, t)
		}
	}
	return out
}
