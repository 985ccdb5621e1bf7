package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mocagate/gating-api/databases"
	"github.com/mocagate/gating-api/databases/mocks"
)

func consumeFixture(modified int64, updateErr error) (databases.InviteCodeDatabase, *mocks.CollectionHelper) {
	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	db.On("Collection", "inviteCodes").Return(conn)

	updateResult := &mocks.UpdateResultHelper{}
	updateResult.On("ModifiedCount").Return(modified)
	if updateErr != nil {
		conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, updateErr)
	} else {
		conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResult, nil)
	}

	return databases.NewInviteCodeDatabase(db), conn
}

func TestInviteCodeConsumeUse(t *testing.T) {
	icdb, conn := consumeFixture(1, nil)

	id := primitive.NewObjectID()
	consumed, err := icdb.ConsumeUse(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if !consumed {
		t.Error("expected consumed=true")
	}

	// the filter must carry the uses-left guard alongside the id
	call := conn.Calls[0]
	filter, ok := call.Arguments.Get(1).(bson.M)
	if !ok {
		t.Fatalf("unexpected filter type %T", call.Arguments.Get(1))
	}
	if filter["_id"] != id {
		t.Errorf("filter missing id: %v", filter)
	}
	if _, ok := filter["$expr"]; !ok {
		t.Errorf("filter missing $expr guard: %v", filter)
	}
	update, ok := call.Arguments.Get(2).(bson.M)
	if !ok {
		t.Fatalf("unexpected update type %T", call.Arguments.Get(2))
	}
	if _, ok := update["$inc"]; !ok {
		t.Errorf("update missing $inc: %v", update)
	}
}

func TestInviteCodeConsumeUseNoUsesLeft(t *testing.T) {
	icdb, _ := consumeFixture(0, nil)

	consumed, err := icdb.ConsumeUse(context.Background(), primitive.NewObjectID())
	if err != nil {
		t.Fatal(err)
	}
	if consumed {
		t.Error("expected consumed=false when nothing matched")
	}
}

func TestInviteCodeConsumeUseError(t *testing.T) {
	wantErr := errors.New("connection reset")
	icdb, _ := consumeFixture(0, wantErr)

	consumed, err := icdb.ConsumeUse(context.Background(), primitive.NewObjectID())
	if !errors.Is(err, wantErr) {
		t.Errorf("unexpected error: %v", err)
	}
	if consumed {
		t.Error("expected consumed=false on error")
	}
}
