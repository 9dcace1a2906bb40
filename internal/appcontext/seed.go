package appcontext

import (
	"github.com/RoyceAzure/lab/barcheckout/internal/constants"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository/memory"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"github.com/shopspring/decimal"
)

type demoProduct struct {
	name     string
	desc     string
	price    string
	stock    int
	category string
}

var demoProducts = []demoProduct{
	{"Cerveja", "imperial 33cl", "2.50", 100, "Bebidas"},
	{"Água", "garrafa 50cl", "1.00", 200, "Bebidas"},
	{"Café", "expresso", "0.80", 500, "Bebidas"},
	{"Tosta Mista", "fiambre e queijo", "3.20", 40, "Comida"},
	{"Bifana", "pão com carne de porco", "3.50", 30, "Comida"},
}

// seedDemoData 只給 memory store 使用, 使用者 1 是一般使用者, 2 是 admin
func seedDemoData(store *memory.Store) error {
	categories := map[string]model.Category{}
	for _, p := range demoProducts {
		cat, ok := categories[p.category]
		if !ok {
			cat = store.AddCategory(p.category)
			categories[p.category] = cat
		}
		if _, err := store.AddProduct(model.Product{
			Name:        p.name,
			Description: p.desc,
			Price:       decimal.RequireFromString(p.price),
			Stock:       p.stock,
			CategoryID:  cat.CategoryID,
		}); err != nil {
			return err
		}
	}
	store.AddUser(model.User{UserID: 1, Name: "Cliente", Email: "cliente@example.com", Role: string(constants.RoleUser)})
	store.AddUser(model.User{UserID: 2, Name: "Balcão", Email: "balcao@example.com", Role: string(constants.RoleAdmin)})
	return nil
}
