// Package tacoshop drives the legacy storefront's session-based,
// CSRF-protected, server-rendered ordering flow as if it were a
// structured API.
package tacoshop

import (
	"net/url"
	"time"

	"tacorder-backend/lib/restyutil"
	"tacorder-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/tacoshop")

// upstream endpoints. the ajax paths all live under the same PHP
// front controller, responses are HTML fragments unless noted.
const (
	homePath      = "/"
	orderPagePath = "/index.php"
	summaryPath   = "/ajax/commande_resume.php"
	tacoPath      = "/ajax/commande_tacos.php"
	extraPath     = "/ajax/commande_extra.php"
	drinkPath     = "/ajax/commande_boisson.php"
	dessertPath   = "/ajax/commande_dessert.php"
	submitPath    = "/ajax/commande_valider.php"
	stockPath     = "/office/stock.php"
)

// the ?page= value of the content page known to embed the csrf token
const orderPageQuery = "commande"

type Client struct {
	BaseUrl *url.URL
	http    *resty.Client
}

type ClientOptions struct {
	BaseUrl string
	// optional sink for full HTTP exchange dumps, nil disables them
	Debug restyutil.InstrumentOutput
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	// cookies are per logical session and carried explicitly on every
	// request, a process-wide jar would bleed sessions into each other
	client.SetCookieJar(nil)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "scrapers/tacoshop/http")
	restyutil.InstrumentClient(client, opts.Debug)

	c := &Client{
		BaseUrl: baseUrl,
		http:    client,
	}
	return c, nil
}

func (c *Client) origin() string {
	return c.BaseUrl.Scheme + "://" + c.BaseUrl.Host
}
