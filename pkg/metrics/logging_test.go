package metrics

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestForwardedMessage(t *testing.T) {
	e := logrus.NewEntry(logrus.New())
	e.Message = "claim submitted"
	assert.Equal(t, "claim submitted", forwardedMessage(e))

	e = e.WithFields(logrus.Fields{
		"type":        "staking/client",
		"position_id": 7,
	}).WithError(errors.New("position is still locked"))
	e.Message = "claim rejected"

	assert.Equal(
		t,
		`message="claim rejected", error="position is still locked", data={"position_id":7,"type":"staking/client"}`,
		forwardedMessage(e),
	)
}
