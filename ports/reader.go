package ports

import (
	"context"

	"vectralab/domain/gnomon"
)

// KindAuto asks the reader to infer the channel kind from the file's columns.
const KindAuto gnomon.ChannelKind = "auto"

// ChannelReader loads one channel recording from storage. The analysis core never
// reads files itself; callers obtain channels through this port.
type ChannelReader interface {
	// ReadChannel reads path and returns its readings in file order. kind may be
	// KindAuto (or empty) to infer linear vs radial from the column headers.
	ReadChannel(ctx context.Context, path, name string, kind gnomon.ChannelKind) (gnomon.Channel, error)
}
