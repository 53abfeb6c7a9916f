package store

const schema = `
CREATE TABLE IF NOT EXISTS dishes (
    position      INTEGER PRIMARY KEY,
    restaurant    TEXT NOT NULL DEFAULT '',
    food          TEXT NOT NULL DEFAULT '',
    price         REAL,
    taste         REAL,
    location      TEXT NOT NULL DEFAULT '',
    portion_size  TEXT NOT NULL DEFAULT '',
    dish_category TEXT NOT NULL DEFAULT '',
    description   TEXT,
    source_url    TEXT NOT NULL DEFAULT '',
    votes_count   INTEGER
);

CREATE INDEX IF NOT EXISTS idx_dishes_food ON dishes(food);
CREATE INDEX IF NOT EXISTS idx_dishes_restaurant ON dishes(restaurant);
`
