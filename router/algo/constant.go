package algo

import (
	"errors"

	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField("module", "algo")

	// 错误：边的端点超出点的范围
	ErrVertexOutOfRange = errors.New("vertex out of range")
	// 错误：边权为负
	ErrNegativeWeight = errors.New("negative edge weight")
	// 错误：关联表与边表不一致
	ErrMalformedGraph = errors.New("malformed graph")
	// 错误：最短路表与图不一致
	ErrMalformedTable = errors.New("malformed shortest path table")
)
