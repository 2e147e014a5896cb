package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/nats-io/nats.go"
)

const DefaultInvalidationSubject = "i3dm.cache.invalidate"

type invalidationMessage struct {
	Key       string    `json:"key"`
	NodeID    string    `json:"node_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Invalidator evicts payloads from the local store when any loader announces a key as stale, and
// announces the keys evicted locally.
type Invalidator struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	subject string
	nodeID  string
	store   Store
}

func NewInvalidator(url, subject, nodeID string, store Store) (*Invalidator, error) {
	if subject == "" {
		subject = DefaultInvalidationSubject
	}
	conn, err := nats.Connect(url,
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			glog.Warningf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			glog.Infof("nats reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to nats at %s: %w", url, err)
	}

	i := &Invalidator{conn: conn, subject: subject, nodeID: nodeID, store: store}
	i.sub, err = conn.Subscribe(subject, i.handle)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to subscribe to %s: %w", subject, err)
	}
	glog.Infof("cache invalidations on %s (subject %s)", url, subject)
	return i, nil
}

// Evicts key locally and announces it to the other loaders
func (i *Invalidator) Invalidate(ctx context.Context, key string) error {
	if err := i.store.Delete(ctx, key); err != nil {
		return err
	}
	data, err := json.Marshal(invalidationMessage{Key: key, NodeID: i.nodeID, Timestamp: time.Now()})
	if err != nil {
		return err
	}
	if err := i.conn.Publish(i.subject, data); err != nil {
		return fmt.Errorf("unable to publish invalidation of %s: %w", key, err)
	}
	return nil
}

func (i *Invalidator) handle(msg *nats.Msg) {
	var message invalidationMessage
	if err := json.Unmarshal(msg.Data, &message); err != nil {
		glog.Errorf("malformed invalidation message: %v", err)
		return
	}
	if message.NodeID == i.nodeID {
		return
	}
	if err := i.store.Delete(context.Background(), message.Key); err != nil {
		glog.Errorf("unable to evict %s: %v", message.Key, err)
		return
	}
	glog.V(2).Infof("evicted %s on request of %s", message.Key, message.NodeID)
}

func (i *Invalidator) Close() error {
	if i.sub != nil {
		if err := i.sub.Unsubscribe(); err != nil {
			glog.Warningf("unable to unsubscribe from %s: %v", i.subject, err)
		}
	}
	if i.conn != nil {
		i.conn.Close()
	}
	return nil
}
