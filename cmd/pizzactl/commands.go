package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/apiclient"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/cart"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/urfave/cli/v2"
)

type env struct {
	out         io.Writer
	cartPath    string
	sessionPath string
	client      *apiclient.Client
	session     *session
}

func newApp(out io.Writer) *cli.App {
	e := &env{out: out}
	stateDir := defaultStateDir()

	return &cli.App{
		Name:      "pizzactl",
		Usage:     "browse the menu, fill a cart and place orders",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Value: "http://localhost:8080", EnvVars: []string{"PIZZA_API_URL"}, Usage: "API base URL"},
			&cli.StringFlag{Name: "cart", Value: filepath.Join(stateDir, "cart.json"), EnvVars: []string{"PIZZA_CART"}, Usage: "cart file"},
			&cli.StringFlag{Name: "session", Value: filepath.Join(stateDir, "session.json"), EnvVars: []string{"PIZZA_SESSION"}, Usage: "login file"},
		},
		Before: func(c *cli.Context) error {
			s, err := loadSession(c.String("session"))
			if err != nil {
				return err
			}
			e.session = s
			e.cartPath = c.String("cart")
			e.sessionPath = c.String("session")
			e.client = apiclient.New(c.String("api"), s.Token)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "menu",
				Usage: "list pizzas",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "search"},
					&cli.BoolFlag{Name: "vegetarian"},
				},
				Action: e.menu,
			},
			{
				Name:  "cart",
				Usage: "manage the local cart",
				Subcommands: []*cli.Command{
					{Name: "show", Usage: "print the cart", Action: e.cartShow},
					{
						Name:      "add",
						Usage:     "add a pizza in a size",
						ArgsUsage: "PIZZA_ID SIZE",
						Flags:     []cli.Flag{&cli.IntFlag{Name: "quantity", Aliases: []string{"q"}, Value: 1}},
						Action:    e.cartAdd,
					},
					{Name: "remove", Usage: "drop a line", ArgsUsage: "ITEM_ID", Action: e.cartRemove},
					{Name: "update", Usage: "set a line quantity", ArgsUsage: "ITEM_ID QUANTITY", Action: e.cartUpdate},
					{Name: "clear", Usage: "empty the cart", Action: e.cartClear},
				},
			},
			{
				Name:      "register",
				Usage:     "create an account and log in",
				ArgsUsage: "NAME EMAIL PASSWORD",
				Action:    e.register,
			},
			{
				Name:      "login",
				ArgsUsage: "EMAIL PASSWORD",
				Usage:     "log in and remember the token",
				Action:    e.login,
			},
			{
				Name:  "logout",
				Usage: "forget the stored token",
				Action: func(c *cli.Context) error {
					return (&session{}).save(e.sessionPath)
				},
			},
			{
				Name:  "checkout",
				Usage: "place an order with the cart contents",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "email"},
					&cli.StringFlag{Name: "address", Required: true},
					&cli.StringFlag{Name: "city", Required: true},
					&cli.StringFlag{Name: "zip", Required: true},
					&cli.StringFlag{Name: "phone", Required: true},
					&cli.StringFlag{Name: "payment", Value: string(models.PaymentCard), Usage: "card or cash"},
				},
				Action: e.checkout,
			},
			{
				Name:      "orders",
				Usage:     "list my orders, or show one",
				ArgsUsage: "[ORDER_ID]",
				Action:    e.orders,
			},
		},
	}
}

func (e *env) menu(c *cli.Context) error {
	q := apiclient.PizzaQuery{Category: c.String("category"), Search: c.String("search")}
	if c.IsSet("vegetarian") {
		veg := c.Bool("vegetarian")
		q.Vegetarian = &veg
	}
	pizzas, err := e.client.ListPizzas(c.Context, q)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICES")
	for _, p := range pizzas {
		prices := make([]string, 0, len(p.Sizes))
		for _, size := range p.Sizes {
			prices = append(prices, fmt.Sprintf("%s %s", size, p.Price[size].StringFixed(2)))
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, strings.Join(prices, ", "))
	}
	return w.Flush()
}

func (e *env) withCart(fn func(*cart.Cart) error) error {
	ct, err := cart.Load(e.cartPath)
	if err != nil {
		return err
	}
	if err := fn(ct); err != nil {
		return err
	}
	if err := ct.Save(e.cartPath); err != nil {
		return err
	}
	return e.printCart(ct)
}

func (e *env) printCart(ct *cart.Cart) error {
	if ct.Empty() {
		fmt.Fprintln(e.out, "Cart is empty")
		return nil
	}
	w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tPIZZA\tSIZE\tQTY\tPRICE")
	for _, item := range ct.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", item.ID, item.Name, item.SelectedSize, item.Quantity, item.Price.StringFixed(2))
	}
	fmt.Fprintf(w, "\t\t\t%d\t%s\n", ct.TotalItems, ct.TotalPrice.StringFixed(2))
	return w.Flush()
}

func (e *env) cartShow(c *cli.Context) error {
	ct, err := cart.Load(e.cartPath)
	if err != nil {
		return err
	}
	return e.printCart(ct)
}

func (e *env) cartAdd(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return cli.Exit("usage: pizzactl cart add PIZZA_ID SIZE", 2)
	}
	id, err := strconv.ParseUint(c.Args().Get(0), 10, 64)
	if err != nil {
		return cli.Exit("PIZZA_ID must be a number", 2)
	}
	pizza, err := e.client.GetPizza(c.Context, uint(id))
	if err != nil {
		return err
	}
	return e.withCart(func(ct *cart.Cart) error {
		return ct.AddPizza(pizza, c.Args().Get(1), c.Int("quantity"))
	})
}

func (e *env) cartRemove(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return cli.Exit("usage: pizzactl cart remove ITEM_ID", 2)
	}
	return e.withCart(func(ct *cart.Cart) error {
		ct.Remove(c.Args().First())
		return nil
	})
}

func (e *env) cartUpdate(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return cli.Exit("usage: pizzactl cart update ITEM_ID QUANTITY", 2)
	}
	qty, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return cli.Exit("QUANTITY must be a number", 2)
	}
	return e.withCart(func(ct *cart.Cart) error {
		ct.UpdateQuantity(c.Args().First(), qty)
		return nil
	})
}

func (e *env) cartClear(c *cli.Context) error {
	return e.withCart(func(ct *cart.Cart) error {
		ct.Clear()
		return nil
	})
}

func (e *env) remember(auth *models.AuthPayload) error {
	e.session.Token = auth.Token
	if auth.User != nil {
		e.session.Email = auth.User.Email
	}
	if err := e.session.save(e.sessionPath); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Logged in as %s\n", e.session.Email)
	return nil
}

func (e *env) register(c *cli.Context) error {
	if c.Args().Len() != 3 {
		return cli.Exit("usage: pizzactl register NAME EMAIL PASSWORD", 2)
	}
	auth, err := e.client.Register(c.Context, models.RegisterRequest{
		Name:     c.Args().Get(0),
		Email:    c.Args().Get(1),
		Password: c.Args().Get(2),
	})
	if err != nil {
		return err
	}
	return e.remember(auth)
}

func (e *env) login(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return cli.Exit("usage: pizzactl login EMAIL PASSWORD", 2)
	}
	auth, err := e.client.Login(c.Context, models.LoginRequest{Email: c.Args().Get(0), Password: c.Args().Get(1)})
	if err != nil {
		return err
	}
	return e.remember(auth)
}

func (e *env) checkout(c *cli.Context) error {
	if e.session.Token == "" {
		return cli.Exit("log in before checking out", 1)
	}
	ct, err := cart.Load(e.cartPath)
	if err != nil {
		return err
	}
	if ct.Empty() {
		return cli.Exit("cart is empty", 1)
	}

	email := c.String("email")
	if email == "" {
		email = e.session.Email
	}
	total := ct.TotalPrice
	order, err := e.client.CreateOrder(c.Context, models.CreateOrderRequest{
		Items: ct.CheckoutLines(),
		ShippingAddress: &models.ShippingAddress{
			Name:    c.String("name"),
			Email:   email,
			Address: c.String("address"),
			City:    c.String("city"),
			Zip:     c.String("zip"),
			Phone:   c.String("phone"),
		},
		PaymentMethod: models.PaymentMethod(c.String("payment")),
		TotalAmount:   &total,
	})
	if err != nil {
		return err
	}

	// the order is stored, so the cart is spent
	ct.Clear()
	if err := ct.Save(e.cartPath); err != nil {
		return err
	}
	printOrder(e.out, order)
	return nil
}

func (e *env) orders(c *cli.Context) error {
	if c.Args().Present() {
		id, err := strconv.ParseUint(c.Args().First(), 10, 64)
		if err != nil {
			return cli.Exit("ORDER_ID must be a number", 2)
		}
		order, err := e.client.GetOrder(c.Context, uint(id))
		if err != nil {
			return err
		}
		printOrder(e.out, order)
		return nil
	}

	orders, err := e.client.MyOrders(c.Context)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tSTATUS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", o.ID, o.OrderDate.Format("2006-01-02 15:04"), o.Status, o.TotalAmount.StringFixed(2))
	}
	return w.Flush()
}

func printOrder(out io.Writer, o *models.Order) {
	fmt.Fprintf(out, "Order #%d  %s\n", o.ID, o.Status)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, item := range o.Items {
		fmt.Fprintf(w, "  %dx\t%s\t%s\t%s\n", item.Quantity, item.Name, item.SelectedSize, item.Price.StringFixed(2))
	}
	fmt.Fprintf(w, "  Subtotal\t\t\t%s\n", o.Subtotal.StringFixed(2))
	fmt.Fprintf(w, "  Delivery\t\t\t%s\n", o.DeliveryFee.StringFixed(2))
	fmt.Fprintf(w, "  Tax\t\t\t%s\n", o.Tax.StringFixed(2))
	fmt.Fprintf(w, "  Total\t\t\t%s\n", o.TotalAmount.StringFixed(2))
	_ = w.Flush()
}
