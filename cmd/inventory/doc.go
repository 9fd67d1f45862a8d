// Command inventory manages the product inventory database.
//
//	inventory migrate              # create or upgrade the schema
//	inventory migrate:rollback
//	inventory migrate:status
//	inventory seed [name...]       # run seeders, e.g. dummy_products
//	inventory product list
//	inventory product add --name Widget --price 500 --quantity 10 \
//	    --supplier Acme --phone +1234
//	inventory product sell 1
//
// Configuration comes from config/app.yaml, .env and INVENTORY_* variables;
// --db and --authority override them.
package main
