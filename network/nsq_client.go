package network

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

type NSQClient struct {
	URL        string
	httpClient *http.Client
}

// Formally define this so the engines can run without a queue.
type Publisher interface {
	Publish(topic string, body []byte) error
}

// NewNSQClient returns a new NSQ client that posts to the nsqd HTTP
// endpoint at url, which usually ends with :4151.
//
// This client only writes to the queue. Workers read from it through
// go-nsq consumers.
func NewNSQClient(url string) *NSQClient {
	return &NSQClient{URL: url, httpClient: http.DefaultClient}
}

// Publish posts body to the specified NSQ topic.
func (client *NSQClient) Publish(topic string, body []byte) error {
	pubURL := fmt.Sprintf("%s/pub?topic=%s", client.URL, url.QueryEscape(topic))
	resp, err := client.httpClient.Post(pubURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("Nsqd returned an error when publishing to %s: %v", topic, err)
	}
	if resp == nil {
		return fmt.Errorf("No response from nsqd at '%s'. Is it running?", pubURL)
	}

	// nsqd sends a simple OK. We have to read the response body,
	// or the connection will hang open forever.
	respBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyText := "[no response body]"
		if len(respBody) > 0 {
			bodyText = string(respBody)
		}
		return fmt.Errorf("nsqd returned status code %d when publishing to %s. "+
			"Response body: %s", resp.StatusCode, topic, bodyText)
	}
	return nil
}
