package messaging

import (
	"context"
)

// StageHandler processes one decoded event payload for a pipeline stage.
//
// A nil return means the work is committed and the delivery can be
// acknowledged. A domain.ValidationError marks the payload permanently
// unprocessable and the delivery is terminated without retry. Any other
// error is treated as transient and the delivery is negatively
// acknowledged for redelivery.
type StageHandler func(ctx context.Context, data []byte) error
