// Package domain defines the persistence models for the marketplace: buyers,
// shopkeepers, products, reviews, chat messages, and the product
// request/response workflow. These types are mapped with GORM and form the
// core data layer of the application.
package domain

import "time"

// UserType discriminates the two account kinds sharing the login endpoint.
const (
	UserTypeBuyer      = "user"
	UserTypeShopkeeper = "shopkeeper"
)

// User is a buyer account. Buyers browse shops, chat with shopkeepers, post
// product requests, and leave reviews.
//
// Fields:
//   - Mobile: unique 10-digit login identifier; also unique across shopkeepers
//     (enforced at the service layer, since the uniqueness spans two tables).
//   - PasswordHash: bcrypt hash; never serialized.
//   - ProfilePic: optional path/URL supplied by the client.
type User struct {
	ID           uint      `json:"id"     gorm:"primaryKey"`
	Name         string    `json:"name"   gorm:"type:varchar(100);not null"`
	Mobile       string    `json:"mobile" gorm:"type:varchar(10);not null;uniqueIndex:ux_users_mobile"`
	PasswordHash string    `json:"-"      gorm:"type:varchar(100);not null"`
	ProfilePic   string    `json:"profile_pic,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Shopkeeper is a seller account plus their shop's public profile. The shop
// is not a separate aggregate: one shopkeeper owns exactly one shop, as in
// the village-market domain.
//
// Latitude/Longitude are pointers so "no location yet" is representable; the
// directory listing only includes shops whose coordinates are set, and the
// distance endpoints validate them per request.
type Shopkeeper struct {
	ID           uint      `json:"id"        gorm:"primaryKey"`
	Name         string    `json:"name"      gorm:"type:varchar(100);not null"`
	Mobile       string    `json:"mobile"    gorm:"type:varchar(10);not null;uniqueIndex:ux_shopkeepers_mobile"`
	PasswordHash string    `json:"-"         gorm:"type:varchar(100);not null"`
	Village      string    `json:"village"   gorm:"type:varchar(100)"`
	City         string    `json:"city"      gorm:"type:varchar(100);index:idx_shops_city"`
	ShopName     string    `json:"shop_name" gorm:"type:varchar(150);index:idx_shops_search"`
	Category     string    `json:"category"  gorm:"type:varchar(100);index:idx_shops_category"`
	Latitude     *float64  `json:"latitude"  gorm:"index:idx_shops_location,priority:1"`
	Longitude    *float64  `json:"longitude" gorm:"index:idx_shops_location,priority:2"`
	OwnerPhoto   string    `json:"owner_photo,omitempty"  gorm:"type:text"`
	ShopPhoto    string    `json:"shop_photo,omitempty"   gorm:"type:text"`
	IsOpen       bool      `json:"is_open"   gorm:"not null;default:true"`
	OpeningTime  string    `json:"opening_time,omitempty" gorm:"type:varchar(16)"`
	ClosingTime  string    `json:"closing_time,omitempty" gorm:"type:varchar(16)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for Shopkeeper.
func (Shopkeeper) TableName() string { return "shopkeepers" }

// Product is a single catalog item belonging to one shop. Special-offer rows
// additionally carry an offer message and the pre-discount price, and feed
// the cached offers listing.
type Product struct {
	ID             uint      `json:"id"      gorm:"primaryKey"`
	ShopID         uint      `json:"shop_id" gorm:"not null;index:idx_products_shop_sort,priority:1"`
	Name           string    `json:"name"    gorm:"type:varchar(150);not null;index:idx_products_search"`
	Price          float64   `json:"price"   gorm:"not null"`
	Image          string    `json:"image,omitempty" gorm:"type:text"`
	InStock        bool      `json:"in_stock"         gorm:"not null;default:true"`
	IsBestSeller   bool      `json:"is_best_seller"   gorm:"not null;default:false;index:idx_products_shop_sort,priority:2"`
	IsSpecialOffer bool      `json:"is_special_offer" gorm:"not null;default:false;index:idx_products_offers"`
	OfferMessage   string    `json:"offer_message,omitempty" gorm:"type:text"`
	OriginalPrice  *float64  `json:"original_price,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Shop is the owning shopkeeper. Products go away with their shop.
	Shop Shopkeeper `json:"-" gorm:"foreignKey:ShopID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// Review is one buyer's rating of one shop. A buyer may review a shop at
// most once (unique index on shop_id+user_id).
type Review struct {
	ID        uint      `json:"id"      gorm:"primaryKey"`
	ShopID    uint      `json:"shop_id" gorm:"not null;uniqueIndex:ux_reviews_shop_user,priority:1"`
	UserID    uint      `json:"user_id" gorm:"not null;index;uniqueIndex:ux_reviews_shop_user,priority:2"`
	Rating    int       `json:"rating"  gorm:"not null;check:rating BETWEEN 1 AND 5"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_reviews_timestamp,sort:desc"`

	Shop Shopkeeper `json:"-" gorm:"foreignKey:ShopID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User User       `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Review.
func (Review) TableName() string { return "reviews" }

// ChatMessage is one utterance between a buyer and a shopkeeper. SenderType
// is "user" or "shopkeeper"; sender and receiver IDs refer to the respective
// tables depending on direction. The hidden flags implement per-side
// conversation archiving without deleting history.
type ChatMessage struct {
	ID                  uint      `json:"id"          gorm:"primaryKey"`
	SenderType          string    `json:"sender_type" gorm:"type:varchar(16);not null;check:sender_type IN ('user','shopkeeper');index:idx_messages_sender,priority:2"`
	SenderID            uint      `json:"sender_id"   gorm:"not null;index:idx_messages_sender,priority:1"`
	ReceiverID          uint      `json:"receiver_id" gorm:"not null;index:idx_messages_receiver"`
	Content             string    `json:"content"     gorm:"type:text;not null"`
	HiddenForShopkeeper bool      `json:"-"           gorm:"not null;default:false"`
	HiddenForUser       bool      `json:"-"           gorm:"not null;default:false"`
	CreatedAt           time.Time `json:"timestamp"   gorm:"index:idx_messages_timestamp,sort:desc"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "messages" }

// Request workflow statuses.
const (
	RequestStatusPending = "pending"
	RequestStatusClosed  = "closed"
)

// ProductRequest is a buyer's broadcast "who has X?" query. Shopkeepers see
// pending requests for a limited window and answer with RequestResponse rows.
type ProductRequest struct {
	ID          uint      `json:"id"           gorm:"primaryKey"`
	UserID      uint      `json:"user_id"      gorm:"not null;index:idx_requests_user"`
	ProductName string    `json:"product_name" gorm:"type:varchar(150);not null"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Status      string    `json:"status"       gorm:"type:varchar(16);not null;default:'pending';index:idx_requests_status"`
	CreatedAt   time.Time `json:"timestamp"    gorm:"index:idx_requests_timestamp,sort:desc"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ProductRequest.
func (ProductRequest) TableName() string { return "product_requests" }

// RequestResponse is one shop's answer to a product request. A declined
// request is recorded with ProductName "NO" so the shop stops seeing it.
// Buyers archive responses instead of deleting them. One response per
// (request, shop) pair.
type RequestResponse struct {
	ID          uint      `json:"id"           gorm:"primaryKey"`
	RequestID   uint      `json:"request_id"   gorm:"not null;uniqueIndex:ux_responses_request_shop,priority:1"`
	ShopID      uint      `json:"shop_id"      gorm:"not null;index:idx_responses_shop;uniqueIndex:ux_responses_request_shop,priority:2"`
	ProductName string    `json:"product_name" gorm:"type:varchar(150);not null"`
	Price       float64   `json:"price"        gorm:"not null"`
	Image       string    `json:"image,omitempty" gorm:"type:text"`
	Note        string    `json:"note,omitempty"  gorm:"type:text"`
	IsArchived  bool      `json:"is_archived"  gorm:"not null;default:false;index:idx_responses_archived"`
	CreatedAt   time.Time `json:"timestamp"    gorm:"index:idx_responses_timestamp,sort:desc"`

	Request ProductRequest `json:"-" gorm:"foreignKey:RequestID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Shop    Shopkeeper     `json:"-" gorm:"foreignKey:ShopID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for RequestResponse.
func (RequestResponse) TableName() string { return "request_responses" }
