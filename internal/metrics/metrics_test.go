package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCommandLabelsByWord(t *testing.T) {
	before := testutil.ToFloat64(commandCounter.WithLabelValues("tpl", "ok"))
	ObserveCommand("tpl %Id,%Td", true, nil, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(commandCounter.WithLabelValues("tpl", "ok")))

	before = testutil.ToFloat64(commandCounter.WithLabelValues("cha", "not_ok"))
	ObserveCommand("cha 76", false, nil, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(commandCounter.WithLabelValues("cha", "not_ok")))

	before = testutil.ToFloat64(commandCounter.WithLabelValues("show", "error"))
	ObserveCommand("show", false, errors.New("io"), time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(commandCounter.WithLabelValues("show", "error")))
}

func TestObserveSession(t *testing.T) {
	before := testutil.ToFloat64(sessionCounter.WithLabelValues("write", "failure"))
	ObserveSession("write", errors.New("field"))
	assert.Equal(t, before+1, testutil.ToFloat64(sessionCounter.WithLabelValues("write", "failure")))
}
