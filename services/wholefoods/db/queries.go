package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const upsertStore = `
insert into stores (
    id, status, date_opened, latitude, longitude,
    street, city, state, zip_code, postal_code, updated_at
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
on conflict (id) do update set
    status = excluded.status,
    date_opened = excluded.date_opened,
    latitude = excluded.latitude,
    longitude = excluded.longitude,
    street = excluded.street,
    city = excluded.city,
    state = excluded.state,
    zip_code = excluded.zip_code,
    postal_code = excluded.postal_code,
    updated_at = excluded.updated_at
`

type UpsertStoreParams Store

func (q *Queries) UpsertStore(ctx context.Context, arg UpsertStoreParams) error {
	_, err := q.db.ExecContext(ctx, upsertStore,
		arg.ID,
		arg.Status,
		arg.DateOpened,
		arg.Latitude,
		arg.Longitude,
		arg.Street,
		arg.City,
		arg.State,
		arg.ZipCode,
		arg.PostalCode,
		arg.UpdatedAt,
	)
	return err
}

const getStore = `
select id, status, date_opened, latitude, longitude,
    street, city, state, zip_code, postal_code, updated_at
from stores where id = ?
`

func (q *Queries) GetStore(ctx context.Context, id string) (Store, error) {
	row := q.db.QueryRowContext(ctx, getStore, id)
	var i Store
	err := row.Scan(
		&i.ID,
		&i.Status,
		&i.DateOpened,
		&i.Latitude,
		&i.Longitude,
		&i.Street,
		&i.City,
		&i.State,
		&i.ZipCode,
		&i.PostalCode,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertProduct = `
insert into products (
    store_id, slug, name, price, brand, asin, amazon_product_id, rank, is_available,
    category, category_2, category_3,
    diets, ingredients, allergens, additives, certifications, related_products,
    nutrition_group, nutrition_label_format, serving_info,
    is_alcoholic, unit_of_measure, image, updated_at
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
on conflict (store_id, slug) do update set
    name = excluded.name,
    price = excluded.price,
    brand = excluded.brand,
    asin = excluded.asin,
    amazon_product_id = excluded.amazon_product_id,
    rank = excluded.rank,
    is_available = excluded.is_available,
    category = excluded.category,
    category_2 = excluded.category_2,
    category_3 = excluded.category_3,
    diets = excluded.diets,
    ingredients = excluded.ingredients,
    allergens = excluded.allergens,
    additives = excluded.additives,
    certifications = excluded.certifications,
    related_products = excluded.related_products,
    nutrition_group = excluded.nutrition_group,
    nutrition_label_format = excluded.nutrition_label_format,
    serving_info = excluded.serving_info,
    is_alcoholic = excluded.is_alcoholic,
    unit_of_measure = excluded.unit_of_measure,
    image = excluded.image,
    updated_at = excluded.updated_at
`

type UpsertProductParams Product

func (q *Queries) UpsertProduct(ctx context.Context, arg UpsertProductParams) error {
	_, err := q.db.ExecContext(ctx, upsertProduct,
		arg.StoreID,
		arg.Slug,
		arg.Name,
		arg.Price,
		arg.Brand,
		arg.Asin,
		arg.AmazonProductID,
		arg.Rank,
		arg.IsAvailable,
		arg.Category,
		arg.Category2,
		arg.Category3,
		arg.Diets,
		arg.Ingredients,
		arg.Allergens,
		arg.Additives,
		arg.Certifications,
		arg.RelatedProducts,
		arg.NutritionGroup,
		arg.NutritionLabelFormat,
		arg.ServingInfo,
		arg.IsAlcoholic,
		arg.UnitOfMeasure,
		arg.Image,
		arg.UpdatedAt,
	)
	return err
}

const getProduct = `
select store_id, slug, name, price, brand, asin, amazon_product_id, rank, is_available,
    category, category_2, category_3,
    diets, ingredients, allergens, additives, certifications, related_products,
    nutrition_group, nutrition_label_format, serving_info,
    is_alcoholic, unit_of_measure, image, updated_at
from products where store_id = ? and slug = ?
`

type GetProductParams struct {
	StoreID string
	Slug    string
}

func (q *Queries) GetProduct(ctx context.Context, arg GetProductParams) (Product, error) {
	row := q.db.QueryRowContext(ctx, getProduct, arg.StoreID, arg.Slug)
	var i Product
	err := row.Scan(
		&i.StoreID,
		&i.Slug,
		&i.Name,
		&i.Price,
		&i.Brand,
		&i.Asin,
		&i.AmazonProductID,
		&i.Rank,
		&i.IsAvailable,
		&i.Category,
		&i.Category2,
		&i.Category3,
		&i.Diets,
		&i.Ingredients,
		&i.Allergens,
		&i.Additives,
		&i.Certifications,
		&i.RelatedProducts,
		&i.NutritionGroup,
		&i.NutritionLabelFormat,
		&i.ServingInfo,
		&i.IsAlcoholic,
		&i.UnitOfMeasure,
		&i.Image,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteNutritionElements = `
delete from nutrition_elements where store_id = ? and slug = ?
`

type DeleteNutritionElementsParams struct {
	StoreID string
	Slug    string
}

func (q *Queries) DeleteNutritionElements(ctx context.Context, arg DeleteNutritionElementsParams) error {
	_, err := q.db.ExecContext(ctx, deleteNutritionElements, arg.StoreID, arg.Slug)
	return err
}

const insertNutritionElement = `
insert into nutrition_elements (
    store_id, slug, position, nutrient_key, name, unit_of_measure,
    amount_per_serving, recommended_daily_value
) values (?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertNutritionElementParams NutritionElement

func (q *Queries) InsertNutritionElement(ctx context.Context, arg InsertNutritionElementParams) error {
	_, err := q.db.ExecContext(ctx, insertNutritionElement,
		arg.StoreID,
		arg.Slug,
		arg.Position,
		arg.Key,
		arg.Name,
		arg.UnitOfMeasure,
		arg.AmountPerServing,
		arg.RecommendedDailyValue,
	)
	return err
}

const getNutritionElements = `
select store_id, slug, position, nutrient_key, name, unit_of_measure,
    amount_per_serving, recommended_daily_value
from nutrition_elements
where store_id = ? and slug = ?
order by position
`

type GetNutritionElementsParams struct {
	StoreID string
	Slug    string
}

func (q *Queries) GetNutritionElements(ctx context.Context, arg GetNutritionElementsParams) ([]NutritionElement, error) {
	rows, err := q.db.QueryContext(ctx, getNutritionElements, arg.StoreID, arg.Slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []NutritionElement
	for rows.Next() {
		var i NutritionElement
		if err := rows.Scan(
			&i.StoreID,
			&i.Slug,
			&i.Position,
			&i.Key,
			&i.Name,
			&i.UnitOfMeasure,
			&i.AmountPerServing,
			&i.RecommendedDailyValue,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countStores = `select count(*) from stores`

func (q *Queries) CountStores(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countStores)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countProducts = `select count(*) from products`

func (q *Queries) CountProducts(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countProducts)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const productsPerCategory = `
select coalesce(category, '') as category, count(*) as count
from products
group by coalesce(category, '')
order by count desc, category asc
`

type ProductsPerCategoryRow struct {
	Category string
	Count    int64
}

func (q *Queries) ProductsPerCategory(ctx context.Context) ([]ProductsPerCategoryRow, error) {
	rows, err := q.db.QueryContext(ctx, productsPerCategory)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ProductsPerCategoryRow
	for rows.Next() {
		var i ProductsPerCategoryRow
		if err := rows.Scan(&i.Category, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
