package qdrantDB

import (
	"github.com/TCC-RagBot/RagBot-Back/internal/domain/ragErrors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// classify maps gRPC failures onto the error taxonomy. Anything the server
// rejected as a bad argument is a validation problem; every other failure
// means the index cannot serve the request.
func classify(err error, action string) error {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.FailedPrecondition:
		return ragErrors.New(ragErrors.KindValidation, err, "qdrant rejected request while %s", action)
	default:
		return ragErrors.IndexUnavailable(err, "qdrant unavailable while %s", action)
	}
}
