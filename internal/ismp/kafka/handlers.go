package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"regionx/internal/ismp"
	"regionx/internal/ismp/wire"
	"regionx/internal/platform/kafka/consumer"
)

// Topics names the topics the transport reads and writes.
type Topics struct {
	Requests  string
	Responses string
	Timeouts  string
	Heights   string
}

// Register routes the inbound topics to module and heights.
func Register(router *consumer.Router, topics Topics, module ismp.Module, heights *Heights) {
	router.Register(topics.Responses, &ResponseHandler{module: module})
	router.Register(topics.Timeouts, &TimeoutHandler{module: module})
	router.Register(topics.Heights, &HeightHandler{heights: heights})
}

// ResponseHandler delivers GET responses to the module. A rejected response
// is dropped by the consumer; the module keeps the region in its current state.
type ResponseHandler struct {
	module ismp.Module
}

func (h *ResponseHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	var body wire.GetResponse
	if err := json.Unmarshal(msg.Value, &body); err != nil {
		return fmt.Errorf("decode get response: %w", err)
	}
	response, err := body.ToISMP()
	if err != nil {
		return err
	}
	if err := h.module.OnResponse(ctx, response); err != nil {
		return fmt.Errorf("response %s rejected: %w", response.Get.Commitment(), err)
	}
	return nil
}

type TimeoutHandler struct {
	module ismp.Module
}

func (h *TimeoutHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	var body wire.Timeout
	if err := json.Unmarshal(msg.Value, &body); err != nil {
		return fmt.Errorf("decode timeout: %w", err)
	}
	req := body.Request.ToISMP()
	if err := h.module.OnTimeout(ctx, ismp.RequestTimeout{Request: req}); err != nil {
		return fmt.Errorf("timeout %s rejected: %w", req.Commitment(), err)
	}
	return nil
}

type HeightHandler struct {
	heights *Heights
}

func (h *HeightHandler) Handle(_ context.Context, msg *consumer.Message) error {
	var update wire.HeightUpdate
	if err := json.Unmarshal(msg.Value, &update); err != nil {
		return fmt.Errorf("decode height update: %w", err)
	}
	id, err := update.ID()
	if err != nil {
		return err
	}
	h.heights.SetHeight(id, update.Height)
	return nil
}
