package rewrite

// DefaultRules is the import migration for the mcp-proxy-server crate after
// error, config, transport and protocol moved into mcp_proxy_core. Specific
// import forms come before the generic module prefixes that would otherwise
// swallow them.
func DefaultRules() RuleSet {
	return NewRuleSet(
		// error
		MustRule(`use crate::error::Result;`, "use mcp_proxy_core::Result;"),
		MustRule(`use crate::error::\{Result, ServerError\};`, "use mcp_proxy_core::{Result, error::ServerError};"),
		MustRule(`use crate::error::\{ProxyError, Result\};`, "use mcp_proxy_core::{ProxyError, Result};"),
		MustRule(`use crate::error::HealthError;`, "use mcp_proxy_core::error::HealthError;"),
		MustRule(`use crate::error::ProxyError;`, "use mcp_proxy_core::ProxyError;"),

		// config
		MustRule(`use crate::config::ServerConfig;`, "use mcp_proxy_core::config::ServerConfig;"),
		MustRule(`use crate::config::Config;`, "use mcp_proxy_core::Config;"),
		MustRule(`use crate::config::`, "use mcp_proxy_core::config::"),

		// transport
		MustRule(`use crate::transport::\{create_transport, Transport\};`, "use mcp_proxy_core::transport::{create_transport, Transport};"),
		MustRule(`use crate::transport::`, "use mcp_proxy_core::transport::"),

		// protocol
		MustRule(`use crate::protocol::\{mcp, JsonRpcId, JsonRpcMessage, JsonRpcV2Message\};`, "use mcp_proxy_core::protocol::{mcp, JsonRpcId, JsonRpcMessage, JsonRpcV2Message};"),
		MustRule(`use crate::protocol::`, "use mcp_proxy_core::protocol::"),

		// inline paths
		MustRule(`crate::error::ProxyError`, "mcp_proxy_core::ProxyError"),
		MustRule(`crate::error::ConfigError`, "mcp_proxy_core::error::ConfigError"),
		MustRule(`crate::error::ServerError`, "mcp_proxy_core::error::ServerError"),
		MustRule(`crate::config::Config`, "mcp_proxy_core::Config"),
		MustRule(`crate::config::validate`, "mcp_proxy_core::config::validate"),
		MustRule(`crate::transport::pool::ConnectionPool`, "mcp_proxy_core::transport::pool::ConnectionPool"),
	)
}
