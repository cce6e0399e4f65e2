package identity

import (
	"context"
	"sync"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// Client is the authentication state of one client over a shared Service
type Client struct {
	svc *Service

	// notifyMu orders deliveries so listeners never see a stale identity
	// after a newer one.
	notifyMu sync.Mutex

	mu        sync.Mutex
	current   *model.Identity
	listeners map[int]Listener
	nextID    int
}

var _ Provider = (*Client)(nil)

// NewClient returns a client whose current identity is current, which may
// be nil for a signed-out client.
func NewClient(svc *Service, current *model.Identity) *Client {
	return &Client{
		svc:       svc,
		current:   current,
		listeners: make(map[int]Listener),
	}
}

func (c *Client) CreateAccount(ctx context.Context, email, password string) (*model.Identity, error) {
	identity, err := c.svc.CreateAccount(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.setCurrent(identity)
	return identity, nil
}

func (c *Client) SetDisplayName(ctx context.Context, identity *model.Identity, name string) error {
	if err := c.svc.SetDisplayName(ctx, identity.UID, name); err != nil {
		return err
	}

	c.mu.Lock()
	if c.current != nil && c.current.UID == identity.UID {
		updated := *c.current
		updated.DisplayName = name
		c.current = &updated
	}
	c.mu.Unlock()

	identity.DisplayName = name
	return nil
}

func (c *Client) SendVerification(ctx context.Context, identity *model.Identity, callbackURL string) error {
	return c.svc.SendVerification(ctx, identity.UID, callbackURL)
}

func (c *Client) Authenticate(ctx context.Context, email, password string) (*model.Identity, error) {
	identity, err := c.svc.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.setCurrent(identity)
	return identity, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	c.setCurrent(nil)
	return nil
}

func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.svc.SendPasswordReset(ctx, email)
}

func (c *Client) OnIdentityChange(fn Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	go func() {
		c.notifyMu.Lock()
		defer c.notifyMu.Unlock()

		c.mu.Lock()
		_, active := c.listeners[id]
		current := c.current
		c.mu.Unlock()
		if active {
			fn(current)
		}
	}()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Current returns the signed-in identity or nil
func (c *Client) Current() *model.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// setCurrent replaces the identity and notifies listeners in the calling
// goroutine, so a caller returns only after listeners have seen the change.
func (c *Client) setCurrent(identity *model.Identity) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	c.current = identity
	listeners := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(identity)
	}
}
