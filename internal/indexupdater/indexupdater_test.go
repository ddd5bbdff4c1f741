package indexupdater

import (
	"context"
	"strings"
	"testing"

	"github.com/canonical/upload-charm-docs/internal/table"
)

type recordingClient struct {
	updateCalls int
	lastBody    string
}

func (c *recordingClient) CreateTopic(ctx context.Context, title, content string) (string, error) {
	panic("not used")
}
func (c *recordingClient) RetrieveTopic(ctx context.Context, topicURL string) (string, error) {
	panic("not used")
}
func (c *recordingClient) UpdateTopic(ctx context.Context, topicURL, content, editReason string) (string, error) {
	c.updateCalls++
	c.lastBody = content
	return topicURL, nil
}
func (c *recordingClient) DeleteTopic(ctx context.Context, topicURL string) (string, error) {
	panic("not used")
}
func (c *recordingClient) CheckTopicReadPermission(ctx context.Context, topicURL string) (bool, error) {
	return true, nil
}
func (c *recordingClient) CheckTopicWritePermission(ctx context.Context, topicURL string) (bool, error) {
	return true, nil
}
func (c *recordingClient) AbsoluteURL(topicURL string) (string, error) { return topicURL, nil }

func TestUpdatePushesRebuiltTable(t *testing.T) {
	t.Parallel()
	client := &recordingClient{}
	rows := []table.Row{{Level: 1, Path: "intro", Navlink: table.Navlink{Title: "Intro", Link: table.NewLink("/t/intro/1")}}}

	body, err := Update(context.Background(), client, "/t/index/1", "# Preamble\n", rows, false)
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if client.updateCalls != 1 {
		t.Errorf("Update() made %d update_topic calls, want 1", client.updateCalls)
	}
	if !strings.Contains(body, "Intro") {
		t.Errorf("Update() body = %q, want it to contain the row", body)
	}
	if client.lastBody != body {
		t.Errorf("Update() pushed body = %q, want %q", client.lastBody, body)
	}
}

func TestUpdateDraftModeNeverCallsClient(t *testing.T) {
	t.Parallel()
	client := &recordingClient{}
	rows := []table.Row{{Level: 1, Path: "intro", Navlink: table.Navlink{Title: "Intro", Link: table.NewLink("/t/intro/1")}}}

	body, err := Update(context.Background(), client, "/t/index/1", "# Preamble\n", rows, true)
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if client.updateCalls != 0 {
		t.Errorf("Update() in draft mode made %d update_topic calls, want 0", client.updateCalls)
	}
	if !strings.Contains(body, "Intro") {
		t.Errorf("Update() should still compute the would-be body, got %q", body)
	}
}

func TestUpdateEmptyRowsCollapsesToPreambleAndEmptyTable(t *testing.T) {
	t.Parallel()
	client := &recordingClient{}

	body, err := Update(context.Background(), client, "/t/index/1", "# Preamble\n", nil, false)
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if !strings.HasPrefix(body, "# Preamble\n"+table.Marker) {
		t.Errorf("Update() body = %q, want preamble followed immediately by the marker", body)
	}
}
