package snapshot

import (
	"errors"

	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/encoding/protowire"
)

var (
	log = logrus.WithField("module", "snapshot")

	// 错误：文件读写失败
	ErrSnapshotIO = errors.New("snapshot io error")
	// 错误：文件内容不符合格式
	ErrSnapshotSchema = errors.New("snapshot schema error")
)

// 文件头：6字节标识 + 2字节版本号
var magic = [8]byte{'T', 'C', 'S', 'N', 'A', 'P', 0x00, 0x01}

// 字段编号
const (
	snapshotSettings protowire.Number = 1
	snapshotStop     protowire.Number = 2
	snapshotBusLine  protowire.Number = 3
	snapshotDistance protowire.Number = 4
	snapshotGraph    protowire.Number = 5
	snapshotRouter   protowire.Number = 6

	settingsWaitTime protowire.Number = 1
	settingsVelocity protowire.Number = 2

	stopID   protowire.Number = 1
	stopName protowire.Number = 2
	stopLat  protowire.Number = 3
	stopLng  protowire.Number = 4

	busLineID       protowire.Number = 1
	busLineName     protowire.Number = 2
	busLineCircular protowire.Number = 3
	busLineStops    protowire.Number = 4

	distanceFrom     protowire.Number = 1
	distanceTo       protowire.Number = 2
	distanceMeters   protowire.Number = 3
	distanceExplicit protowire.Number = 4

	graphVertexCount protowire.Number = 1
	graphEdge        protowire.Number = 2
	graphIncidence   protowire.Number = 3

	edgeFrom      protowire.Number = 1
	edgeTo        protowire.Number = 2
	edgeWeight    protowire.Number = 3
	edgeLineID    protowire.Number = 4
	edgeSpanCount protowire.Number = 5

	incidenceVertex protowire.Number = 1
	incidenceEdges  protowire.Number = 2

	routerRow protowire.Number = 1

	rowSource  protowire.Number = 1
	rowEntries protowire.Number = 2

	entryReached  protowire.Number = 1
	entryWeight   protowire.Number = 2
	entryPrevEdge protowire.Number = 3
)
