// Package rewrite transforms upstream HTML and CSS bodies so that every
// resource reference they contain points back through the proxy.
package rewrite

// Banner is the notice markup injected as the first child of <body> in
// every rewritten HTML page.
const Banner = `<div style="background-color: #ffc107; color: #333; padding: 12px; text-align: center; font-family: sans-serif; font-size: 16px; border-bottom: 2px solid #e0a800; z-index: 999999; position: sticky; top: 0;">
    <b>Notice:</b> This page is intended for educational and research purposes only. This connection is relayed by a proxy server, which can view or modify traffic. Avoid submitting passwords, financial details, or any sensitive personal data.
</div>`
