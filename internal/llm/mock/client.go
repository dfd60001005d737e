package mock

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/essayblitz/internal/llm"
)

// Client - фейковая модель для тестов и для LLM_PROVIDER=mock
type Client struct {
	Response string
	Error    error
	Delay    time.Duration

	mu         sync.Mutex
	CallCount  int
	LastSystem string
	LastPrompt string
	AllCalls   []LLMCall
}

type LLMCall struct {
	System string
	Prompt string
}

// SampleFeedback - правдоподобный ответ в текстовом формате
const SampleFeedback = `OVERALL: 8/10 → A warm, specific essay with a clear voice.
PROMPT FIT: 7/10 → Answers the prompt, though the ending drifts.

SCORES
Impact: 8/10 → the closing image stays with the reader
Authenticity: 9/10 → sounds like a real person
Storytelling: 7/10 → the middle section loses momentum
Clarity: 8/10 → easy to follow
Writing Quality: 7/10 → a few long sentences

3 FIXES
1. Cut the first sentence and start with the scene.
2. Name one concrete thing you learned.
3. Tie the last line back to the prompt.

REWRITTEN PARAGRAPH:
The lab smelled of burnt sugar the night our experiment failed for the third time.

ONE SENTENCE OF ENCOURAGEMENT:
You already have the story, now just trust it.`

func New() *Client {
	return &Client{
		Response: SampleFeedback,
	}
}

func (c *Client) WithResponse(response string) *Client {
	c.Response = response
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) Name() string { return "mock" }

func (c *Client) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	c.mu.Lock()
	c.CallCount++
	c.LastSystem = system
	c.LastPrompt = prompt
	c.AllCalls = append(c.AllCalls, LLMCall{System: system, Prompt: prompt})
	c.mu.Unlock()

	if c.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.Delay):
		}
	}

	if c.Error != nil {
		return "", c.Error
	}

	return c.Response, nil
}

func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CallCount
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount = 0
	c.LastSystem = ""
	c.LastPrompt = ""
	c.AllCalls = nil
}

var _ llm.Client = (*Client)(nil)
