package samurai

import "github.com/sirupsen/logrus"

func (d *Downloader) log(args ...interface{}) {
	if d.EnableLog {
		logrus.Println(args...)
	}
}

func (d *Downloader) logf(format string, args ...interface{}) {
	if d.EnableLog {
		logrus.Printf(format, args...)
	}
}

// logVerbose is used for the step by step messages of a single puzzle.
func (d *Downloader) logVerbose(p Puzzle, format string, args ...interface{}) {
	if d.EnableLog && d.EnableVerboseLog {
		logrus.WithField("puzzle", p.Value).Debugf(format, args...)
	}
}

func (d *Downloader) warnf(format string, args ...interface{}) {
	if d.EnableLog {
		logrus.Warnf(format, args...)
	}
}
