package api

import (
	"context"
	"encoding/json"
	"errors"

	"ridebooking/internal/domain"
	"ridebooking/internal/models"
	"ridebooking/internal/service"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const bookingServiceName = "ridebooking.v1.BookingService"

// BookingServiceServer carries the same JSON documents as the HTTP routes, as google.protobuf.Struct.
type BookingServiceServer interface {
	BookRide(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateLocation(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var bookingServiceDesc = grpc.ServiceDesc{
	ServiceName: bookingServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "BookRide", Handler: bookRideHandler},
		{MethodName: "UpdateLocation", Handler: updateLocationHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ridebooking/v1/booking.proto",
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&bookingServiceDesc, srv)
}

func bookRideHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BookingServiceServer).BookRide(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + bookingServiceName + "/BookRide"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BookingServiceServer).BookRide(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func updateLocationHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BookingServiceServer).UpdateLocation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + bookingServiceName + "/UpdateLocation"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BookingServiceServer).UpdateLocation(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// BookingGRPCService maps gRPC calls onto the booking and tracking services.
type BookingGRPCService struct {
	bookings domain.BookingService
	tracking domain.TrackingService
	authOn   bool
}

func NewBookingGRPCService(bookings domain.BookingService, tracking domain.TrackingService, auth *BearerAuth) *BookingGRPCService {
	return &BookingGRPCService{bookings: bookings, tracking: tracking, authOn: auth.Enabled()}
}

func (s *BookingGRPCService) BookRide(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req models.BookingRequest
	if err := fromStruct(in, &req); err != nil || !req.HasRequiredFields() {
		return nil, status.Error(codes.InvalidArgument, models.MsgMissingFields)
	}
	if s.authOn {
		if uid, _ := UIDFromContext(ctx); uid != req.UserUID {
			return nil, status.Error(codes.PermissionDenied, msgTokenMismatch)
		}
	}

	if _, err := s.bookings.CreateBooking(ctx, req); err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			return nil, status.Error(codes.InvalidArgument, models.MsgMissingFields)
		}
		return nil, status.Error(codes.Internal, models.ErrMsgSaveBooking)
	}

	return structpb.NewStruct(map[string]any{"message": models.MsgBooked})
}

func (s *BookingGRPCService) UpdateLocation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var update models.LocationUpdate
	if err := fromStruct(in, &update); err != nil {
		return nil, status.Error(codes.InvalidArgument, models.MsgMissingFields)
	}
	if s.authOn {
		update.DriverUID, _ = UIDFromContext(ctx)
	}

	if err := s.tracking.UpdateLocation(ctx, update); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			return nil, status.Error(codes.InvalidArgument, models.MsgMissingFields)
		case errors.Is(err, service.ErrInvalidCoordinates):
			return nil, status.Error(codes.InvalidArgument, models.MsgInvalidCoordinates)
		default:
			return nil, status.Error(codes.Internal, models.ErrMsgSaveLocation)
		}
	}

	return structpb.NewStruct(map[string]any{
		"message":     models.MsgLocationUpdated,
		"vehicle":     update.VehicleID,
		"coordinates": update.Coordinates(),
	})
}

// fromStruct decodes a Struct through its JSON form so field names and types match the HTTP body.
func fromStruct(in *structpb.Struct, dst any) error {
	raw, err := json.Marshal(in.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
