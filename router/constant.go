package router

import (
	"errors"

	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField("module", "router")

	// 错误：候车时间或公交速度不合法
	ErrInvalidSettings = errors.New("invalid routing settings")
)
