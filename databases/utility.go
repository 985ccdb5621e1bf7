package databases

import "go.mongodb.org/mongo-driver/mongo/options"

type mongoPaginate struct {
	limit  int64
	offset int64
}

func newMongoPaginate(limit, offset int) *mongoPaginate {
	return &mongoPaginate{
		limit:  int64(limit),
		offset: int64(offset),
	}
}

func (mp *mongoPaginate) getPaginatedOpts() *options.FindOptions {
	l := mp.limit
	skip := mp.offset
	fOpt := options.FindOptions{Limit: &l, Skip: &skip}

	return &fOpt
}

// PaginatedOpts builds limit/offset find options for listing endpoints.
func PaginatedOpts(limit, offset int) *options.FindOptions {
	return newMongoPaginate(limit, offset).getPaginatedOpts()
}
