package requestid

const Header = "X-Request-Id"
