package grpc

import (
	"context"

	"github.com/dmitrijs2005/wellkeeper/internal/common"
	pb "github.com/dmitrijs2005/wellkeeper/internal/proto"
	"github.com/dmitrijs2005/wellkeeper/internal/store"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func decode(in *structpb.Struct, v any) error {
	if err := pb.Decode(in, v); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

func encode(v any) (*structpb.Struct, error) {
	out, err := pb.Encode(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func callerID(ctx context.Context) (string, error) {
	id, ok := userIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	return id, nil
}

func (s *GRPCServer) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req pb.Credentials
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Registration request", "username", req.Username)

	sess, err := s.users.Register(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "register", err)
	}

	s.logger.Info(ctx, "Registered", "username", req.Username, "user_id", sess.UserID)
	return encode(pb.Session{UserID: sess.UserID, AccessToken: sess.AccessToken})
}

func (s *GRPCServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req pb.Credentials
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	sess, err := s.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "login", err)
	}
	return encode(pb.Session{UserID: sess.UserID, AccessToken: sess.AccessToken})
}

func (s *GRPCServer) Ping(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return encode(pb.PingReply{Status: "OK"})
}

func (s *GRPCServer) Select(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	uid, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	var req pb.SelectRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	entries, err := s.store.Select(ctx, req.Query.ScopedTo(uid))
	if err != nil {
		return nil, s.toStatus(ctx, "select", err)
	}
	return encode(pb.SelectReply{Entries: entries})
}

func (s *GRPCServer) Count(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	uid, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	var req pb.SelectRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	n, err := s.store.Count(ctx, req.Query.ScopedTo(uid))
	if err != nil {
		return nil, s.toStatus(ctx, "count", err)
	}
	return encode(pb.CountReply{Count: n})
}

func (s *GRPCServer) Insert(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	uid, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	var req pb.InsertRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.Input.Validate(); err != nil {
		return nil, s.toStatus(ctx, "insert", err)
	}

	e, err := s.store.Insert(ctx, uid, req.Input)
	if err != nil {
		return nil, s.toStatus(ctx, "insert", err)
	}
	return encode(pb.EntryReply{Entry: e})
}

// authorize confirms that entry id belongs to uid.
func (s *GRPCServer) authorize(ctx context.Context, uid, id string) error {
	rows, err := s.store.Select(ctx, store.Query{
		Columns: []store.Column{store.ColumnUserID},
		Where:   []store.Predicate{store.Eq(store.ColumnID, id)},
		Limit:   1,
	})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return common.ErrorNotFound
	}
	if rows[0].UserID != uid {
		return common.ErrorForbidden
	}
	return nil
}

func (s *GRPCServer) Update(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	uid, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	var req pb.UpdateRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.Patch.Validate(); err != nil {
		return nil, s.toStatus(ctx, "update", err)
	}
	if err := s.authorize(ctx, uid, req.ID); err != nil {
		return nil, s.toStatus(ctx, "update", err)
	}

	e, err := s.store.Update(ctx, req.ID, req.Patch)
	if err != nil {
		return nil, s.toStatus(ctx, "update", err)
	}
	return encode(pb.EntryReply{Entry: e})
}

func (s *GRPCServer) Delete(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	uid, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	var req pb.DeleteRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, uid, req.ID); err != nil {
		return nil, s.toStatus(ctx, "delete", err)
	}

	e, err := s.store.Delete(ctx, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, "delete", err)
	}
	return encode(pb.EntryReply{Entry: e})
}

// Watch streams the caller's change events until the client goes away.
func (s *GRPCServer) Watch(in *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()
	uid, err := callerID(ctx)
	if err != nil {
		return err
	}

	feed, err := s.store.Watch(ctx, uid)
	if err != nil {
		return s.toStatus(ctx, "watch", err)
	}

	s.logger.Info(ctx, "watch opened", "user_id", uid)
	defer s.logger.Info(ctx, "watch closed", "user_id", uid)

	for ev := range feed {
		msg, err := encode(ev)
		if err != nil {
			return err
		}
		if err := stream.Send(msg); err != nil {
			return err
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	return status.Error(codes.Unavailable, "change feed closed")
}
