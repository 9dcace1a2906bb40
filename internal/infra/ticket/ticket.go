package ticket

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"github.com/golang-jwt/jwt/v5"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	dataURLPrefix    = "data:image/png;base64,"
	defaultQRSize    = 256
	minSigningKeyLen = 32
)

var (
	ErrInvalidTicket  = errors.New("ticket is invalid")
	ErrDigestMismatch = errors.New("ticket does not match order contents")
)

type Item struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Payload 取貨憑證的標準內容, 只來自訂單明細快照
type Payload struct {
	User    string `json:"user"`
	UserID  int64  `json:"user_id"`
	OrderID string `json:"order_id"`
	Items   []Item `json:"items"`
}

type Claims struct {
	OrderID string `json:"order_id"`
	UserID  int64  `json:"user_id"`
	Digest  string `json:"digest"`
	jwt.RegisteredClaims
}

// Ticket Token 為簽章, Image 為 QR code 的 data url
type Ticket struct {
	Token string
	Image string
}

// digestContent 只包含訂單快照, 顯示名稱不影響 digest
type digestContent struct {
	UserID  int64  `json:"user_id"`
	OrderID string `json:"order_id"`
	Items   []Item `json:"items"`
}

type qrContent struct {
	Payload
	Token string `json:"token"`
}

// PayloadFromOrder userName 為空時以 user id 顯示
func PayloadFromOrder(order *model.Order, userName string) Payload {
	if userName == "" {
		userName = strconv.FormatInt(order.UserID, 10)
	}
	items := make([]Item, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return Payload{
		User:    userName,
		UserID:  order.UserID,
		OrderID: order.OrderID,
		Items:   items,
	}
}

// canonical 明細依 product id 排序, 同樣的訂單內容得到同樣的 digest
func (p Payload) canonical() Payload {
	c := p
	c.Items = slices.Clone(p.Items)
	slices.SortFunc(c.Items, func(a, b Item) int {
		switch {
		case a.ProductID < b.ProductID:
			return -1
		case a.ProductID > b.ProductID:
			return 1
		}
		return 0
	})
	return c
}

func Digest(p Payload) (string, error) {
	c := p.canonical()
	raw, err := json.Marshal(digestContent{UserID: c.UserID, OrderID: c.OrderID, Items: c.Items})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

type Generator struct {
	signingKey []byte
	qrSize     int
	now        func() time.Time
}

func NewGenerator(signingKey string) (*Generator, error) {
	if len(signingKey) < minSigningKeyLen {
		return nil, fmt.Errorf("invalid ticket signing key size: must be at least %d characters", minSigningKeyLen)
	}
	return &Generator{
		signingKey: []byte(signingKey),
		qrSize:     defaultQRSize,
		now:        time.Now,
	}, nil
}

func (g *Generator) Generate(p Payload) (*Ticket, error) {
	canonical := p.canonical()
	digest, err := Digest(canonical)
	if err != nil {
		return nil, err
	}

	claims := &Claims{
		OrderID: canonical.OrderID,
		UserID:  canonical.UserID,
		Digest:  digest,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       canonical.OrderID,
			IssuedAt: jwt.NewNumericDate(g.now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.signingKey)
	if err != nil {
		return nil, fmt.Errorf("sign ticket: %w", err)
	}

	content, err := json.Marshal(qrContent{Payload: canonical, Token: token})
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(string(content), qrcode.Medium, g.qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}

	return &Ticket{
		Token: token,
		Image: dataURLPrefix + base64.StdEncoding.EncodeToString(png),
	}, nil
}

// Verify 檢查簽章, 並確認 token 內的 digest 與目前的訂單內容一致
func (g *Generator) Verify(token string, p Payload) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return g.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}

	digest, err := Digest(p)
	if err != nil {
		return nil, err
	}
	if claims.Digest != digest || claims.OrderID != p.OrderID || claims.UserID != p.UserID {
		return nil, ErrDigestMismatch
	}
	return claims, nil
}

// DecodeImage 取回 data url 中的 png
func DecodeImage(image string) ([]byte, error) {
	if !strings.HasPrefix(image, dataURLPrefix) {
		return nil, ErrInvalidTicket
	}
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(image, dataURLPrefix))
}
