package request

import (
	"errors"

	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField("module", "request")

	ErrUnknownRequest = errors.New("unknown request type")
)

const (
	notFound       = "not found"
	mapUnsupported = "map rendering is not supported"
)
