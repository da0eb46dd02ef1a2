package catalogue

import (
	"errors"

	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField("module", "catalogue")

	// 错误：车站名重复
	ErrDuplicateStop = errors.New("duplicate stop")
	// 错误：车站不存在
	ErrUnknownStop = errors.New("unknown stop")
	// 错误：线路引用了未声明的车站，或线路本身不合法
	ErrInvalidTopology = errors.New("invalid bus line topology")
	// 错误：两站之间没有任何方向的距离
	ErrNoDistance = errors.New("no distance between stops")
)
