package repository

import (
	"math/big"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/xerrors"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/base/log"
	"github.com/neonmarket/goapi/domain"
	"github.com/neonmarket/goapi/domain/event"
)

// eventDoc is the persisted form of an event. Amounts are decimal strings,
// big.Int has no native bson representation.
type eventDoc struct {
	Type          event.Type       `bson:"type"`
	AuctionId     domain.AuctionId `bson:"auctionId,omitempty"`
	AssetContract domain.Address   `bson:"assetContract,omitempty"`
	AssetId       domain.TokenId   `bson:"assetId,omitempty"`
	Seller        domain.Address   `bson:"seller,omitempty"`
	Account       domain.Address   `bson:"account,omitempty"`
	Winner        domain.Address   `bson:"winner,omitempty"`
	Amount        string           `bson:"amount,omitempty"`
	ReservePrice  string           `bson:"reservePrice,omitempty"`
	EndTime       time.Time        `bson:"endTime,omitempty"`
	FeeBps        uint64           `bson:"feeBps,omitempty"`
	CreatedAt     time.Time        `bson:"createdAt"`
}

func toDoc(e *event.Event) *eventDoc {
	doc := &eventDoc{
		Type:          e.Type,
		AuctionId:     e.AuctionId,
		AssetContract: e.AssetContract,
		AssetId:       e.AssetId,
		Seller:        e.Seller,
		Account:       e.Account,
		Winner:        e.Winner,
		EndTime:       e.EndTime,
		FeeBps:        e.FeeBps,
		CreatedAt:     e.CreatedAt,
	}
	if e.Amount != nil {
		doc.Amount = e.Amount.String()
	}
	if e.ReservePrice != nil {
		doc.ReservePrice = e.ReservePrice.String()
	}
	return doc
}

func fromDoc(doc *eventDoc) (*event.Event, error) {
	e := &event.Event{
		Type:          doc.Type,
		AuctionId:     doc.AuctionId,
		AssetContract: doc.AssetContract,
		AssetId:       doc.AssetId,
		Seller:        doc.Seller,
		Account:       doc.Account,
		Winner:        doc.Winner,
		EndTime:       doc.EndTime,
		FeeBps:        doc.FeeBps,
		CreatedAt:     doc.CreatedAt,
	}
	if doc.Amount != "" {
		v, ok := new(big.Int).SetString(doc.Amount, 10)
		if !ok {
			return nil, xerrors.Errorf("invalid amount %s", doc.Amount)
		}
		e.Amount = v
	}
	if doc.ReservePrice != "" {
		v, ok := new(big.Int).SetString(doc.ReservePrice, 10)
		if !ok {
			return nil, xerrors.Errorf("invalid reserve price %s", doc.ReservePrice)
		}
		e.ReservePrice = v
	}
	return e, nil
}

// MongoRecorder appends marketplace events for external observers. The
// engine never reads events back; FindByAuction only serves the query API.
type MongoRecorder struct {
	col *mongo.Collection
}

func NewMongoRecorder(db *mongo.Database) *MongoRecorder {
	return &MongoRecorder{col: db.Collection(domain.TableMarketplaceEvents)}
}

func (r *MongoRecorder) Record(c ctx.Ctx, e *event.Event) error {
	if _, err := r.col.InsertOne(c, toDoc(e)); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"event": e.Type,
		}).Error("failed to col.InsertOne")
		return err
	}
	return nil
}

// FindByAuction returns the recorded events of one auction in emission order.
func (r *MongoRecorder) FindByAuction(c ctx.Ctx, id domain.AuctionId) ([]*event.Event, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := r.col.Find(c, bson.M{"auctionId": id}, opts)
	if err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("failed to col.Find")
		return nil, err
	}
	defer cursor.Close(c)

	docs := []*eventDoc{}
	if err := cursor.All(c, &docs); err != nil {
		c.WithFields(log.Fields{
			"err":       err,
			"auctionId": id,
		}).Error("failed to cursor.All")
		return nil, err
	}

	res := make([]*event.Event, 0, len(docs))
	for _, doc := range docs {
		e, err := fromDoc(doc)
		if err != nil {
			c.WithFields(log.Fields{
				"err": err,
			}).Error("failed to decode event")
			return nil, err
		}
		res = append(res, e)
	}
	return res, nil
}
