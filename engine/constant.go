package engine

import (
	"errors"

	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField("module", "engine")

	ErrAlreadyBuilt = errors.New("catalogue already built")
	ErrIngestFailed = errors.New("catalogue ingestion failed")
)
