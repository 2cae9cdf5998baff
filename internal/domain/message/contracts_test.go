package message

import "testing"

func TestNew_CoversEveryTopic(t *testing.T) {
	t.Parallel()

	for _, topic := range Topics() {
		msg, ok := New(topic)
		if !ok {
			t.Fatalf("expected contract for topic %s", topic)
		}
		if msg.Topic() != topic {
			t.Fatalf("contract for %s reports topic %s", topic, msg.Topic())
		}
	}
	if _, ok := New("unknown.topic"); ok {
		t.Fatalf("expected unknown topic to be rejected")
	}
}

func TestCorrelation(t *testing.T) {
	t.Parallel()

	req := MatchPredictionRequested{MatchID: "m1", CorrelationID: "c1"}
	done := MatchPredictionCompleted{MatchID: "m1", CorrelationID: "c1"}
	if req.Correlation() != done.Correlation() {
		t.Fatalf("expected request and completion to share correlation id")
	}
}
