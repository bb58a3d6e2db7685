package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/wellkeeper/internal/common"
	"github.com/dmitrijs2005/wellkeeper/internal/logging"
	"github.com/dmitrijs2005/wellkeeper/internal/models"
	pb "github.com/dmitrijs2005/wellkeeper/internal/proto"
	"github.com/dmitrijs2005/wellkeeper/internal/store"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// WatchRetry bounds the pause between Watch reconnects.
type WatchRetry struct {
	Initial time.Duration
	Max     time.Duration
}

var DefaultWatchRetry = WatchRetry{Initial: 250 * time.Millisecond, Max: 15 * time.Second}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.EntryStoreClient
	logger      logging.Logger
	retry       WatchRetry

	mu          sync.RWMutex
	accessToken string
	userID      string
}

var _ store.Store = (*GRPCClient)(nil)

// NewGRPCClient prepares a client for endpointURL. The connection is
// established lazily. Extra dial options are appended to the defaults
// (insecure transport, token interceptors).
func NewGRPCClient(endpointURL string, logger logging.Logger, retry WatchRetry, opts ...grpc.DialOption) (*GRPCClient, error) {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	if retry.Initial <= 0 || retry.Max <= 0 {
		retry = DefaultWatchRetry
	}
	c := &GRPCClient{endpointURL: endpointURL, logger: logger.With("module", "grpc_client"), retry: retry}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithStreamInterceptor(c.streamAccessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewEntryStoreClient(conn)
	return c, nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withAccessToken(ctx, c.token()), method, req, reply, cc, opts...)
}

func (c *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	return streamer(withAccessToken(ctx, c.token()), desc, cc, method, opts...)
}

func (c *GRPCClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// UserID is the signed-in user, or "" before Register or Login.
func (c *GRPCClient) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// SetSession installs a session obtained earlier.
func (c *GRPCClient) SetSession(userID, accessToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
	c.accessToken = accessToken
}

func (c *GRPCClient) Logout() { c.SetSession("", "") }

type rpcFunc func(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)

// call encodes req, invokes fn and decodes the reply into resp.
func (c *GRPCClient) call(ctx context.Context, fn rpcFunc, req, resp any) error {
	in, err := pb.Encode(req)
	if err != nil {
		return err
	}
	out, err := fn(ctx, in)
	if err != nil {
		return mapError(err)
	}
	return pb.Decode(out, resp)
}

func (c *GRPCClient) Register(ctx context.Context, username, password string) (string, error) {
	var sess pb.Session
	if err := c.call(ctx, c.client.Register, pb.Credentials{Username: username, Password: password}, &sess); err != nil {
		return "", err
	}
	c.SetSession(sess.UserID, sess.AccessToken)
	return sess.UserID, nil
}

func (c *GRPCClient) Login(ctx context.Context, username, password string) (string, error) {
	var sess pb.Session
	if err := c.call(ctx, c.client.Login, pb.Credentials{Username: username, Password: password}, &sess); err != nil {
		return "", err
	}
	c.SetSession(sess.UserID, sess.AccessToken)
	return sess.UserID, nil
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	var resp pb.PingReply
	if err := c.call(ctx, c.client.Ping, struct{}{}, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) Select(ctx context.Context, q store.Query) ([]models.Entry, error) {
	var resp pb.SelectReply
	if err := c.call(ctx, c.client.Select, pb.SelectRequest{Query: q}, &resp); err != nil {
		return nil, err
	}
	if resp.Entries == nil {
		resp.Entries = []models.Entry{}
	}
	return resp.Entries, nil
}

func (c *GRPCClient) Count(ctx context.Context, q store.Query) (int, error) {
	var resp pb.CountReply
	if err := c.call(ctx, c.client.Count, pb.SelectRequest{Query: q}, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// checkUser rejects writes on behalf of anyone but the signed-in user.
func (c *GRPCClient) checkUser(userID string) error {
	current := c.UserID()
	if current == "" {
		return fmt.Errorf("%w: %w", common.ErrorUnauthorized, ErrNotLoggedIn)
	}
	if userID != current {
		return fmt.Errorf("%w: session belongs to another user", common.ErrorUnauthorized)
	}
	return nil
}

func (c *GRPCClient) Insert(ctx context.Context, userID string, in models.EntryInput) (models.Entry, error) {
	if err := c.checkUser(userID); err != nil {
		return models.Entry{}, err
	}
	var resp pb.EntryReply
	if err := c.call(ctx, c.client.Insert, pb.InsertRequest{Input: in}, &resp); err != nil {
		return models.Entry{}, err
	}
	return resp.Entry, nil
}

func (c *GRPCClient) Update(ctx context.Context, id string, patch models.EntryPatch) (models.Entry, error) {
	var resp pb.EntryReply
	if err := c.call(ctx, c.client.Update, pb.UpdateRequest{ID: id, Patch: patch}, &resp); err != nil {
		return models.Entry{}, err
	}
	return resp.Entry, nil
}

func (c *GRPCClient) Delete(ctx context.Context, id string) (models.Entry, error) {
	var resp pb.EntryReply
	if err := c.call(ctx, c.client.Delete, pb.DeleteRequest{ID: id}, &resp); err != nil {
		return models.Entry{}, err
	}
	return resp.Entry, nil
}

// Watch streams the signed-in user's changes. Transport failures reopen
// the stream with exponential backoff; authentication failures and ctx
// ending close the channel.
func (c *GRPCClient) Watch(ctx context.Context, userID string) (<-chan models.ChangeEvent, error) {
	if err := c.checkUser(userID); err != nil {
		return nil, err
	}

	out := make(chan models.ChangeEvent, 16)
	go func() {
		defer close(out)

		b := backoff.NewExponentialBackOff()
		b.InitialInterval = c.retry.Initial
		b.MaxInterval = c.retry.Max
		b.MaxElapsedTime = 0
		b.Reset()

		for {
			err := c.watchOnce(ctx, out, b.Reset)
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, common.ErrorUnauthorized) {
				c.logger.Warn(ctx, "watch stopped", "error", err)
				return
			}

			wait := b.NextBackOff()
			c.logger.Warn(ctx, "watch stream lost, reconnecting", "error", err, "wait", wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (c *GRPCClient) watchOnce(ctx context.Context, out chan<- models.ChangeEvent, onOpen func()) error {
	in, err := pb.Encode(struct{}{})
	if err != nil {
		return err
	}
	stream, err := c.client.Watch(ctx, in)
	if err != nil {
		return mapError(err)
	}

	opened := false
	for {
		msg, err := stream.Recv()
		if err != nil {
			return mapError(err)
		}
		if !opened {
			onOpen()
			opened = true
		}

		var ev models.ChangeEvent
		if err := pb.Decode(msg, &ev); err != nil {
			c.logger.Warn(ctx, "dropping undecodable change", "error", err)
			continue
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", common.ErrorUniqueViolation, st.Message())
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", common.ErrorForeignKeyViolation, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrorInvalidArgument, st.Message())
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", common.ErrorForbidden, st.Message())
	case codes.Unauthenticated:
		if st.Message() == common.ErrTokenExpired.Error() {
			return fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrTokenExpired)
		}
		return fmt.Errorf("%w: %s", common.ErrorUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.Canceled:
		return context.Canceled
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
