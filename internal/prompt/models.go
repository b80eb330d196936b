package prompt

// Default instruction text shown in the UI text areas. Kept here because
// the same strings seed the prompt builders in tests.
const DefaultFormatInstructions = `A 4-slide one-page-per-slide presentation:
- Title slide: logo placeholder, title, subtitle, date.
- Executive summary slide: 3 short bullet insights.
- Metrics slide: two-column cards with KPIs (Visitors, Conversions, Conversion Rate, Top Campaign).
- Top campaigns slide: bullets + small inline SVG bar to visualize top 3 campaigns.
Footer: contact details and page number on each slide.`

const DefaultContentInstructions = `Generate a weekly marketing performance presentation for 'Acme Co' covering website traffic, conversions, conversion rate, and top campaigns for the last 7 days. Include short action-oriented insights.`
