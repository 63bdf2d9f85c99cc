package app

import "github.com/MrSnakeDoc/tabshell/internal/logger"

// logNotifier surfaces bridge notices in the log; the shell has no toast UI.
type logNotifier struct {
	log logger.Logger
}

func (n logNotifier) Show(title, message string) {
	n.log.Info("notice", logger.String("title", title), logger.String("message", message))
}

// logSharer records share requests. A platform share sheet plugs in here.
type logSharer struct {
	log logger.Logger
}

func (s logSharer) ShareURL(url, title string) error {
	s.log.Info("share requested", logger.String("url", url), logger.String("title", title))
	return nil
}
